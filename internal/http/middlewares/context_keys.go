package middlewares

const (
	CtxRequestID = "request_id"

	ctxUserIDKey  = "auth.userID"
	ctxTokenIDKey = "auth.tokenID"
	ctxScopeKey   = "auth.scope"
)
