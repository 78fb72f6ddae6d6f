package test_utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type RequestOptions struct {
	Method         string
	URL            string
	Body           any
	AuthToken      string
	Headers        map[string]string
	ExpectedStatus int
}

type TestResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// MakeRequest runs a request against router and asserts the status code.
// A string Body is sent as is, anything else is JSON encoded.
func MakeRequest(t *testing.T, router *gin.Engine, options RequestOptions) *TestResponse {
	t.Helper()

	var body *bytes.Reader
	switch value := options.Body.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(value))
	default:
		data, err := json.Marshal(value)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(options.Method, options.URL, body)
	require.NoError(t, err)

	if options.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if options.AuthToken != "" {
		req.Header.Set("Authorization", options.AuthToken)
	}
	for key, value := range options.Headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if options.ExpectedStatus != 0 {
		require.Equal(t, options.ExpectedStatus, recorder.Code, "unexpected status, body: %s", recorder.Body.String())
	}

	return &TestResponse{
		StatusCode: recorder.Code,
		Body:       recorder.Body.Bytes(),
		Headers:    recorder.Header(),
	}
}

func MakeGetRequest(t *testing.T, router *gin.Engine, url string, authToken string, expectedStatus int) *TestResponse {
	t.Helper()

	return MakeRequest(t, router, RequestOptions{
		Method:         http.MethodGet,
		URL:            url,
		AuthToken:      authToken,
		ExpectedStatus: expectedStatus,
	})
}

func MakeGetRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url string,
	authToken string,
	expectedStatus int,
	target any,
) *TestResponse {
	t.Helper()

	resp := MakeGetRequest(t, router, url, authToken, expectedStatus)
	require.NoError(t, json.Unmarshal(resp.Body, target))

	return resp
}

func MakePostRequest(
	t *testing.T,
	router *gin.Engine,
	url string,
	authToken string,
	body any,
	expectedStatus int,
) *TestResponse {
	t.Helper()

	return MakeRequest(t, router, RequestOptions{
		Method:         http.MethodPost,
		URL:            url,
		Body:           body,
		AuthToken:      authToken,
		ExpectedStatus: expectedStatus,
	})
}

func MakePostRequestAndUnmarshal(
	t *testing.T,
	router *gin.Engine,
	url string,
	authToken string,
	body any,
	expectedStatus int,
	target any,
) *TestResponse {
	t.Helper()

	resp := MakePostRequest(t, router, url, authToken, body, expectedStatus)
	require.NoError(t, json.Unmarshal(resp.Body, target))

	return resp
}

func MakePutRequest(
	t *testing.T,
	router *gin.Engine,
	url string,
	authToken string,
	body any,
	expectedStatus int,
) *TestResponse {
	t.Helper()

	return MakeRequest(t, router, RequestOptions{
		Method:         http.MethodPut,
		URL:            url,
		Body:           body,
		AuthToken:      authToken,
		ExpectedStatus: expectedStatus,
	})
}

func MakePatchRequest(
	t *testing.T,
	router *gin.Engine,
	url string,
	authToken string,
	body any,
	expectedStatus int,
) *TestResponse {
	t.Helper()

	return MakeRequest(t, router, RequestOptions{
		Method:         http.MethodPatch,
		URL:            url,
		Body:           body,
		AuthToken:      authToken,
		ExpectedStatus: expectedStatus,
	})
}

func MakeDeleteRequest(t *testing.T, router *gin.Engine, url string, authToken string, expectedStatus int) *TestResponse {
	t.Helper()

	return MakeRequest(t, router, RequestOptions{
		Method:         http.MethodDelete,
		URL:            url,
		AuthToken:      authToken,
		ExpectedStatus: expectedStatus,
	})
}
