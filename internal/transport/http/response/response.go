package response

type Resp struct {
	Code   int                 `json:"code"`
	Msg    string              `json:"msg"`
	Data   interface{}         `json:"data"`
	Errors map[string][]string `json:"errors,omitempty"`
	Meta   *Meta               `json:"meta,omitempty"`
	Links  *Links              `json:"links,omitempty"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Invalid 422 + 字段错误
func Invalid(msg string, fields map[string][]string) Resp {
	r := Error(CodeUnprocessable, msg)
	r.Errors = fields
	return r
}
