package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/courseimage/internal/api"
	"github.com/dmitrijs2005/courseimage/internal/common"
	"github.com/dmitrijs2005/courseimage/internal/logging"
	"github.com/dmitrijs2005/courseimage/internal/server/auth"
	"github.com/dmitrijs2005/courseimage/internal/server/models"
	"github.com/dmitrijs2005/courseimage/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ginModeOnce sync.Once

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

type fakeUploader struct {
	called    bool
	gotCaller services.Caller
	gotReq    *models.UploadRequest
	res       *models.UploadResult
	err       error
}

func (f *fakeUploader) Upload(_ context.Context, caller services.Caller, req *models.UploadRequest) (*models.UploadResult, error) {
	f.called = true
	f.gotCaller = caller
	f.gotReq = req
	return f.res, f.err
}

func newTestServer(up Uploader) *HTTPServer {
	setupGinTestMode()
	return NewHTTPServer("", logging.Nop{}, up, api.DefaultRegistry(), "secret", 1<<20)
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte("secret"), time.Hour)
	require.NoError(t, err)
	return tok
}

func uploadForm(tok string) url.Values {
	return url.Values{
		"wstoken":            {tok},
		"wsfunction":         {api.UploadCourseImageFunction},
		"moodlewsrestformat": {"json"},
		"component":          {"user"},
		"filearea":           {"draft"},
		"itemid":             {"0"},
		"filepath":           {"/"},
		"filename":           {"a.png"},
		"filecontent":        {"AA=="},
		"contextlevel":       {"user"},
		"instanceid":         {"7"},
		"courseid":           {"5"},
	}
}

func post(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, EndpointPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeException(t *testing.T, rec *httptest.ResponseRecorder) exceptionResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	var e exceptionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestUploadCourseImage_Success(t *testing.T) {
	up := &fakeUploader{res: &models.UploadResult{
		ContextID: 27, Component: "course", FileArea: "overviewfiles", FilePath: "/", FileName: "a.png", URL: "http://x/a.png",
	}}
	s := newTestServer(up)

	rec := post(t, s.Handler(), uploadForm(token(t, 7)))

	require.Equal(t, http.StatusOK, rec.Code)
	var res api.UploadCourseImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, api.UploadCourseImageResponse{
		ContextID: 27, Component: "course", FileArea: "overviewfiles", FilePath: "/", FileName: "a.png", URL: "http://x/a.png",
	}, res)

	assert.Equal(t, int64(7), up.gotCaller.UserID)
	assert.Equal(t, &models.UploadRequest{
		Component:    "user",
		FileArea:     "draft",
		FilePath:     "/",
		FileName:     "a.png",
		FileContent:  "AA==",
		ContextLevel: "user",
		InstanceID:   7,
		CourseID:     5,
	}, up.gotReq)
}

func TestUploadCourseImage_Multipart(t *testing.T) {
	up := &fakeUploader{res: &models.UploadResult{Component: "course", FileArea: "overviewfiles", FilePath: "/", FileName: "a.png"}}
	s := newTestServer(up)

	var body strings.Builder
	boundary := "xxBOUNDARYxx"
	for k, v := range uploadForm(token(t, 7)) {
		body.WriteString("--" + boundary + "\r\n")
		body.WriteString(`Content-Disposition: form-data; name="` + k + "\"\r\n\r\n")
		body.WriteString(v[0] + "\r\n")
	}
	body.WriteString("--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, EndpointPath, strings.NewReader(body.String()))
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, up.called)
	assert.Equal(t, int64(5), up.gotReq.CourseID)
}

func TestUploadCourseImage_TokenErrors(t *testing.T) {
	expired, err := auth.GenerateToken(7, []byte("secret"), -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{"missing", "", "Invalid token - token not found"},
		{"garbage", "not-a-jwt", "Invalid token - token not found"},
		{"wrong secret", func() string {
			tok, err := auth.GenerateToken(7, []byte("other"), time.Hour)
			require.NoError(t, err)
			return tok
		}(), "Invalid token - token not found"},
		{"expired", expired, "Invalid token - token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			s := newTestServer(up)

			e := decodeException(t, post(t, s.Handler(), uploadForm(tt.token)))

			assert.Equal(t, exceptionMoodle, e.Exception)
			assert.Equal(t, "invalidtoken", e.ErrorCode)
			assert.Equal(t, tt.message, e.Message)
			assert.False(t, up.called)
		})
	}
}

func TestUploadCourseImage_BindingErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(url.Values)
	}{
		{"courseid missing", func(v url.Values) { v.Del("courseid") }},
		{"courseid not a number", func(v url.Values) { v.Set("courseid", "five") }},
		{"courseid negative", func(v url.Values) { v.Set("courseid", "-1") }},
		{"itemid negative", func(v url.Values) { v.Set("itemid", "-3") }},
		{"component missing", func(v url.Values) { v.Del("component") }},
		{"filearea missing", func(v url.Values) { v.Del("filearea") }},
		{"bad context level", func(v url.Values) { v.Set("contextlevel", "galaxy") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			s := newTestServer(up)

			form := uploadForm(token(t, 7))
			tt.mutate(form)
			e := decodeException(t, post(t, s.Handler(), form))

			assert.Equal(t, exceptionInvalidParameter, e.Exception)
			assert.Equal(t, "invalidparameter", e.ErrorCode)
			assert.False(t, up.called)
		})
	}
}

func TestUploadCourseImage_ServiceErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		exception string
		code      string
		message   string
	}{
		{"validation", common.ErrNoFile, exceptionInvalidParameter, "nofile", "no file"},
		{"draft only", common.ErrDraftOnly, exceptionMoodle, "draftonly", "upload restricted to draft area"},
		{"no permissions", common.ErrNoPermissions.WithMessage("missing moodle/course:update"), exceptionRequiredCapability, "nopermissions", "missing moodle/course:update"},
		{"conflict", common.ErrFileExists, exceptionMoodle, "fileexist", "file exists"},
		{"busy", common.ErrResourceBusy, exceptionMoodle, "resourcebusy", "course image update in progress"},
		{"not found", common.ErrCourseNotFound, exceptionMoodle, "invalidcourseid", "course not found"},
		{"internal", errors.New("db password is hunter2"), exceptionMoodle, "generalexceptionmessage", "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeUploader{err: tt.err})

			e := decodeException(t, post(t, s.Handler(), uploadForm(token(t, 7))))

			assert.Equal(t, exceptionResponse{Exception: tt.exception, ErrorCode: tt.code, Message: tt.message}, e)
		})
	}
}

func TestServeFunction_Dispatch(t *testing.T) {
	s := newTestServer(&fakeUploader{})

	t.Run("ping needs no token", func(t *testing.T) {
		rec := post(t, s.Handler(), url.Values{"wsfunction": {api.PingFunction}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
	})

	t.Run("unknown function", func(t *testing.T) {
		e := decodeException(t, post(t, s.Handler(), url.Values{"wsfunction": {"core_user_delete_users"}, "wstoken": {token(t, 7)}}))
		assert.Equal(t, exceptionMissingRecord, e.Exception)
		assert.Equal(t, "invalidrecord", e.ErrorCode)
	})

	t.Run("wsfunction missing", func(t *testing.T) {
		e := decodeException(t, post(t, s.Handler(), url.Values{"wstoken": {token(t, 7)}}))
		assert.Equal(t, exceptionInvalidParameter, e.Exception)
	})

	t.Run("xml format rejected", func(t *testing.T) {
		form := uploadForm(token(t, 7))
		form.Set("moodlewsrestformat", "xml")
		e := decodeException(t, post(t, s.Handler(), form))
		assert.Equal(t, exceptionInvalidParameter, e.Exception)
	})

	t.Run("query string parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, EndpointPath+"?wsfunction="+api.PingFunction+"&moodlewsrestformat=json", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
	})
}

func TestServeFunction_BodyTooLarge(t *testing.T) {
	setupGinTestMode()
	up := &fakeUploader{}
	s := NewHTTPServer("", logging.Nop{}, up, api.DefaultRegistry(), "secret", 16)

	form := uploadForm(token(t, 7))
	form.Set("filecontent", strings.Repeat("A", 200<<10))
	e := decodeException(t, post(t, s.Handler(), form))

	assert.Equal(t, exceptionInvalidParameter, e.Exception)
	assert.False(t, up.called)
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeUploader{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
