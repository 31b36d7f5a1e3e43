package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{
		Success: success,
		Code:    code,
		Extras:  extras,
	}
}

func write(c *gin.Context, code int, extras any) {
	c.JSON(code, NewResponse(code < http.StatusBadRequest, code, extras))
}

// SuccessResponse returns a JSON response with a success message with no type limitation
func SuccessResponse(c *gin.Context, extras any) {
	write(c, http.StatusOK, extras)
}

// CreatedResponse answers a request that created a resource.
func CreatedResponse(c *gin.Context, extras any) {
	write(c, http.StatusCreated, extras)
}

// SuccessResponseList returns a JSON response with a success message and a list of items
func SuccessResponseList[T any](c *gin.Context, list []T) {
	write(c, http.StatusOK, map[string]any{"list": list})
}

func ErrorResponse(c *gin.Context, code int, message string) {
	write(c, code, map[string]any{"message": message})
}

// HandleError writes err with the status it maps to.
func HandleError(c *gin.Context, err error) {
	e := FromError(err)
	ErrorResponse(c, e.Code, e.Extras)
}
