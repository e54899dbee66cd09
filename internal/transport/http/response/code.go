package response

// 常见业务 系统级错误码（直接基于 HTTP 语义）
const (
	CodeOK                 = 0
	CodeBadRequest         = 400
	CodeUnauthorized       = 401
	CodeForbidden          = 403
	CodeNotFound           = 404
	CodeConflict           = 409
	CodeTooLarge           = 413
	CodeUnprocessable      = 422
	CodeTooManyRequests    = 429
	CodeServerError        = 500
	CodeServiceUnavailable = 503
	CodeTimeout            = 504
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:                 "OK",
	CodeBadRequest:         "Bad Request",
	CodeUnauthorized:       "Unauthenticated.",
	CodeForbidden:          "This action is unauthorized.",
	CodeNotFound:           "Not Found",
	CodeConflict:           "Conflict",
	CodeTooLarge:           "Request body too large.",
	CodeUnprocessable:      "The given data was invalid.",
	CodeTooManyRequests:    "Too Many Attempts.",
	CodeServerError:        "Server Error.",
	CodeServiceUnavailable: "Server busy.",
	CodeTimeout:            "Request timed out.",
}
