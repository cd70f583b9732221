package revealgate

// 面向拾获者的提示文案
// 除限流外不再细分失败原因
const (
	MsgCompleteCaptcha = "Please complete the verification before revealing contact details."
	MsgRateLimitedFmt  = "You can reveal up to %d contacts per hour. Please try again later."
	MsgTimeout         = "The request took too long. Please check your connection and try again."
	MsgGeneric         = "We couldn't load the owner's contact details. Please try again."
)
