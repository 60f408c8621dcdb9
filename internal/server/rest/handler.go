package rest

import (
	"net/http"

	errors "github.com/Laisky/errors/v2"
	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/server/auth"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Exception classes reported to clients.
const (
	exceptionInvalidParameter   = "invalid_parameter_exception"
	exceptionRequiredCapability = "required_capability_exception"
	exceptionMoodle             = "moodle_exception"
	exceptionMissingRecord      = "dml_missing_record_exception"
)

const formatJSON = "json"

// exceptionResponse is the error body Moodle web-service clients parse.
type exceptionResponse struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

type callParams struct {
	Token    string `form:"wstoken"`
	Function string `form:"wsfunction" binding:"required"`
	Format   string `form:"moodlewsrestformat"`
}

type uploadParams struct {
	ContextID    int64  `form:"contextid" binding:"min=0"`
	Component    string `form:"component" binding:"required"`
	FileArea     string `form:"filearea" binding:"required"`
	ItemID       int64  `form:"itemid" binding:"min=0"`
	FilePath     string `form:"filepath"`
	FileName     string `form:"filename"`
	FileContent  string `form:"filecontent"`
	ContextLevel string `form:"contextlevel" binding:"omitempty,oneof=system user coursecat course module block"`
	InstanceID   int64  `form:"instanceid" binding:"min=0"`
	CourseID     int64  `form:"courseid" binding:"required,gt=0"`
}

func (s *HTTPServer) serveFunction(c *gin.Context) {
	if s.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
	}

	var call callParams
	if err := c.ShouldBindWith(&call, binding.Form); err != nil {
		s.writeException(c, invalidParameter(err))
		return
	}

	if call.Format != "" && call.Format != formatJSON {
		s.writeException(c, exceptionResponse{
			Exception: exceptionInvalidParameter,
			ErrorCode: common.ErrInvalidParameter.Code,
			Message:   "only the json rest format is supported",
		})
		return
	}

	fn, ok := s.registry.Lookup(call.Function)
	if !ok {
		s.writeException(c, exceptionResponse{
			Exception: exceptionMissingRecord,
			ErrorCode: "invalidrecord",
			Message:   "Can't find data record in database table external_functions.",
		})
		return
	}

	var caller services.Caller
	if fn.LoginRequired {
		userID, err := auth.GetUserIDFromToken(call.Token, s.jwtSecret)
		if err != nil {
			msg := "Invalid token - token not found"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "Invalid token - token expired"
			}
			s.writeException(c, exceptionResponse{
				Exception: exceptionMoodle,
				ErrorCode: "invalidtoken",
				Message:   msg,
			})
			return
		}
		caller = services.Caller{UserID: userID}
	}

	switch fn.Name {
	case api.UploadCourseImageFunction:
		s.uploadCourseImage(c, caller)
	case api.PingFunction:
		c.JSON(http.StatusOK, api.PingResponse{Status: "OK"})
	default:
		s.writeException(c, exceptionResponse{
			Exception: exceptionMoodle,
			ErrorCode: "servicenotavailable",
			Message:   "Web service is not available (it doesn't exist or might be disabled)",
		})
	}
}

func (s *HTTPServer) uploadCourseImage(c *gin.Context, caller services.Caller) {
	var p uploadParams
	if err := c.ShouldBindWith(&p, binding.Form); err != nil {
		s.writeException(c, invalidParameter(err))
		return
	}

	ctx := c.Request.Context()
	s.logger.Info(ctx, "Upload course image request", "user_id", caller.UserID, "course_id", p.CourseID)

	res, err := s.uploads.Upload(ctx, caller, &models.UploadRequest{
		ContextID:    p.ContextID,
		Component:    p.Component,
		FileArea:     p.FileArea,
		ItemID:       p.ItemID,
		FilePath:     p.FilePath,
		FileName:     p.FileName,
		FileContent:  p.FileContent,
		ContextLevel: p.ContextLevel,
		InstanceID:   p.InstanceID,
		CourseID:     p.CourseID,
	})
	if err != nil {
		s.writeException(c, s.toException(c, err))
		return
	}

	c.JSON(http.StatusOK, api.UploadCourseImageResponse{
		ContextID: res.ContextID,
		Component: res.Component,
		FileArea:  res.FileArea,
		ItemID:    res.ItemID,
		FilePath:  res.FilePath,
		FileName:  res.FileName,
		URL:       res.URL,
	})
}

// Moodle reports failures with HTTP 200 and an exception body.
func (s *HTTPServer) writeException(c *gin.Context, e exceptionResponse) {
	c.JSON(http.StatusOK, e)
}

func invalidParameter(err error) exceptionResponse {
	return exceptionResponse{
		Exception: exceptionInvalidParameter,
		ErrorCode: common.ErrInvalidParameter.Code,
		Message:   "Invalid parameter value detected (" + err.Error() + ")",
	}
}

// toException maps a service error onto the exception body. Internal
// details never leave the server.
func (s *HTTPServer) toException(c *gin.Context, err error) exceptionResponse {
	typed, ok := common.AsError(err)
	if !ok {
		s.logger.Error(c.Request.Context(), err.Error())
		return exceptionResponse{
			Exception: exceptionMoodle,
			ErrorCode: "generalexceptionmessage",
			Message:   "internal error",
		}
	}

	return exceptionResponse{
		Exception: exceptionClass(typed),
		ErrorCode: typed.Code,
		Message:   typed.Error(),
	}
}

func exceptionClass(e *common.Error) string {
	switch e.Kind {
	case common.KindValidation:
		return exceptionInvalidParameter
	case common.KindPolicy:
		if e.Code == common.ErrNoPermissions.Code {
			return exceptionRequiredCapability
		}
		return exceptionMoodle
	default:
		return exceptionMoodle
	}
}
