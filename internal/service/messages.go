package service

// User-facing failure messages. Views show exactly one of these per failed
// operation; the underlying cause is only logged.
const (
	MsgCatalogUnavailable = "Templates aren’t available yet. Please try again later."
	MsgTemplateNotFound   = "Workout template not found."
	MsgTemplateLoadFailed = "Couldn’t load this workout template."
	MsgLogLoadFailed      = "Couldn’t load your workout log. Please try again."
	MsgLogSaveFailed      = "Couldn’t save your workout. Please try again."
	MsgVoteFailed         = "Couldn’t record your vote. Please try again."
	MsgLoginFailed        = "Login failed. Double-check your email and password."
	MsgSignupFailed       = "Signup failed. Try a different email or a stronger password."
	MsgSeedFailed         = "Couldn’t create the starter catalog. Please try again."
)
