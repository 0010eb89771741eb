package utils

import "github.com/gin-gonic/gin"

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Application error codes grouped by HTTP class.
const (
	CodeOK            = 0
	CodeBadRequest    = 40010 // malformed payload
	CodeNoActionsYet  = 40020 // check-in before today's actions exist
	CodeNotFound      = 40410 // referenced user absent
	CodeRouteNotFound = 40400
	CodeConflict      = 40910 // duplicate user id
	CodeRateLimited   = 42901
	CodeInternal      = 50010
)

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, CodeOK, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
