package handler

type ContextKey string

var (
	RoleCtxKey           ContextKey = "role"
	ActorCtxKey          ContextKey = "actor"
	InstallationIDCtxKey ContextKey = "installationID"
	PostCtxKey           ContextKey = "post"
)
