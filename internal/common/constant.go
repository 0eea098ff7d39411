package common

// CSRFHeaderName carries the CSRF token on state-changing requests.
const CSRFHeaderName = "X-CSRF-TOKEN"

// AuthorizationHeaderName carries the bearer API token.
const AuthorizationHeaderName = "Authorization"

// EntityOfflineOrder is the queue entity kind for sales created offline.
const EntityOfflineOrder = "offline_order"

// ActionCreate is the only queued action type.
const ActionCreate = "create"
