package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
	"github.com/remyvnkhiemtruong/traixuan/app/database"
)

func newFormApp() *fiber.App {
	app := fiber.New()
	app.Post("/banks", func(c *fiber.Ctx) error {
		values := FormValues(c, "bankNames")
		return c.SendString(fmt.Sprintf("%d:%s", len(values), strings.Join(values, "|")))
	})
	app.Get("/id/:id", func(c *fiber.Ctx) error {
		id, ok := ParamID(c, "id")
		return c.SendString(fmt.Sprintf("%d %t", id, ok))
	})
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request) string {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func urlencoded(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/banks", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

func multipartForm(t *testing.T, key string, values ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, v := range values {
		require.NoError(t, w.WriteField(key, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/banks", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestFormValues_Urlencoded(t *testing.T) {
	app := newFormApp()

	require.Equal(t, "2:VCB|ACB", send(t, app, urlencoded(url.Values{"bankNames": {"VCB", "ACB"}})))
	require.Equal(t, "2:VCB|ACB", send(t, app, urlencoded(url.Values{"bankNames[]": {"VCB", "ACB"}})))
	require.Equal(t, "1:", send(t, app, urlencoded(url.Values{"bankNames": {""}})))
	require.Equal(t, "0:", send(t, app, urlencoded(url.Values{"other": {"x"}})))
}

func TestFormValues_Multipart(t *testing.T) {
	app := newFormApp()

	require.Equal(t, "3:VCB|ACB|TCB", send(t, app, multipartForm(t, "bankNames", "VCB", "ACB", "TCB")))
	require.Equal(t, "1:Vietcombank", send(t, app, multipartForm(t, "bankNames[]", "Vietcombank")))
	require.Equal(t, "0:", send(t, app, multipartForm(t, "other", "x")))
}

func TestParamID(t *testing.T) {
	app := newFormApp()

	cases := map[string]string{
		"42":  "42 true",
		"0":   "0 false",
		"-3":  "0 false",
		"abc": "0 false",
	}
	for param, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/id/"+param, nil)
		require.Equal(t, want, send(t, app, req), param)
	}
}

func TestStoreError(t *testing.T) {
	err := StoreError(fmt.Errorf("get food: %w", database.ErrNotFound), "Không tìm thấy món ăn")
	require.True(t, apperr.IsNotFound(err))
	require.Equal(t, "Không tìm thấy món ăn", apperr.UserMessage(err))

	err = StoreError(errors.New("connection refused"), "Không tìm thấy món ăn")
	require.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
}
