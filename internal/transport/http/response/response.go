package response

import "github.com/gin-gonic/gin"

type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New never leaves data null.
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data any) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error builds a failure envelope; an empty msg uses the code's default text.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// JSON writes r with the HTTP status matching its code.
func JSON(c *gin.Context, r Resp) {
	c.JSON(Status(r.Code), r)
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(Status(code), Error(code, msg))
}
