package response

import "github.com/gin-gonic/gin"

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// AbortWithError stops the handler chain and renders err as the body.
func AbortWithError(c *gin.Context, err Error) {
	c.AbortWithStatusJSON(err.Code, err)
}
