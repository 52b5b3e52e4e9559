package webutils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	w := httptest.NewRecorder()
	WriteFile(w, strings.NewReader("payload"), "walk.anim")
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="walk.anim"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "payload", w.Body.String())
}

func TestWriteJsonAndError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJson(w, map[string]int{"limbs": 3})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"limbs": 3}`, w.Body.String())

	w = httptest.NewRecorder()
	WriteErrorCode(w, http.StatusNotFound, errors.New("no such skeleton"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "no such skeleton"}`, w.Body.String())

	w = httptest.NewRecorder()
	WriteJson(w, func() {})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReadJsonFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("project", "proj.json")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`{"Name": "walk"}`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	var v struct{ Name string }
	require.NoError(t, ReadJsonFile(r, "project", &v))
	assert.Equal(t, "walk", v.Name)

	assert.Error(t, ReadJsonFile(httptest.NewRequest(http.MethodGet, "/", nil), "project", &v))
}

func TestDebugLogKeepsStatus(t *testing.T) {
	h := DebugLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/json/project?v=1", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
