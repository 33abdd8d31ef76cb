package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/reports"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
	"github.com/remyvnkhiemtruong/traixuan/app/storage"
)

const testPassword = "vvk2026"

type testEnv struct {
	app       *fiber.App
	repo      *database.MemoryStore
	uploadDir string
	accounts  map[string]int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := database.NewMemoryStore()
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	accounts := map[string]int64{}
	for _, a := range []*models.Account{
		{Username: models.AdminUsername, TeacherName: "Administrator", Role: models.RoleAdmin},
		{Username: "10A1", TeacherName: "Mạc Kim Khai", Role: models.RoleUser},
		{Username: "10A2", TeacherName: "Nguyễn Văn B", Role: models.RoleUser},
	} {
		a.Password = hash
		require.NoError(t, repo.CreateAccount(ctx, a))
		accounts[a.Username] = a.ID
	}

	dir := t.TempDir()
	images, err := storage.NewDiskStore(dir)
	require.NoError(t, err)

	app, err := New(Deps{
		Repo:       repo,
		Images:     images,
		Sessions:   session.New(session.Config{TTL: time.Hour}, log),
		Tokens:     auth.NewTokens("test-secret", time.Hour),
		Log:        log,
		Location:   time.FixedZone("ICT", 7*3600),
		BcryptCost: bcrypt.MinCost,
		MaxUpload:  1 << 20,
	})
	require.NoError(t, err)

	return &testEnv{app: app, repo: repo, uploadDir: dir, accounts: accounts}
}

// client is a browser stand-in that keeps cookies between requests.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, app: e.app, cookies: map[string]string{}}
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)

	for _, ck := range resp.Cookies() {
		expired := !ck.Expires.IsZero() && ck.Expires.Before(time.Now())
		if ck.Value == "" || expired || ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (c *client) get(path string) *http.Response {
	return c.do(httptestRequest(http.MethodGet, path, nil, ""))
}

func (c *client) post(path string, form url.Values) *http.Response {
	return c.do(httptestRequest(http.MethodPost, path, strings.NewReader(form.Encode()), fiber.MIMEApplicationForm))
}

func (c *client) page(path string) string {
	c.t.Helper()
	resp := c.get(path)
	require.Equal(c.t, http.StatusOK, resp.StatusCode, "GET %s", path)
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return string(body)
}

func (c *client) login(username string) {
	c.t.Helper()
	resp := c.post("/login", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(c.t, http.StatusFound, resp.StatusCode)
	require.Contains(c.t, c.cookies, auth.TokenCookie)
}

func httptestRequest(method, path string, body io.Reader, contentType string) *http.Request {
	req, _ := http.NewRequest(method, "http://localhost"+path, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	return req
}

func location(resp *http.Response) string {
	return resp.Header.Get(fiber.HeaderLocation)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	t.Run("wrong password gets no session", func(t *testing.T) {
		c := env.client(t)
		resp := c.post("/login", url.Values{"username": {"10A1"}, "password": {"nope"}})
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/login", location(resp))
		require.NotContains(t, c.cookies, auth.TokenCookie)
		require.Contains(t, c.page("/login"), "Tài khoản hoặc mật khẩu không chính xác")

		require.Equal(t, "/login", location(c.get("/")))
	})

	t.Run("unknown account reads the same", func(t *testing.T) {
		c := env.client(t)
		c.post("/login", url.Values{"username": {"12Z9"}, "password": {testPassword}})
		require.Contains(t, c.page("/login"), "Tài khoản hoặc mật khẩu không chính xác")
	})

	t.Run("class account lands on dashboard", func(t *testing.T) {
		c := env.client(t)
		resp := c.post("/login", url.Values{"username": {"10a1"}, "password": {testPassword}})
		require.Equal(t, "/", location(resp))

		body := c.page("/")
		require.Contains(t, body, "Chào mừng 10A1!")
		require.Contains(t, body, "Mạc Kim Khai")
		require.Equal(t, "/", location(c.get("/login")))
	})

	t.Run("admin lands on admin page", func(t *testing.T) {
		c := env.client(t)
		resp := c.post("/login", url.Values{"username": {"admin"}, "password": {testPassword}})
		require.Equal(t, "/admin", location(resp))
		require.Contains(t, c.page("/admin"), "10A2")
	})
}

func TestGuard(t *testing.T) {
	env := newTestEnv(t)

	anon := env.client(t)
	for _, path := range []string{"/", "/register-food", "/admin", "/admin/export/students"} {
		require.Equal(t, "/login", location(anon.get(path)), path)
	}
	require.Contains(t, anon.page("/login"), "Vui lòng đăng nhập để tiếp tục")

	user := env.client(t)
	user.login("10A1")
	require.Equal(t, "/", location(user.get("/admin")))
	require.Equal(t, "/", location(user.get("/admin/export/representatives")))
	require.Contains(t, user.page("/"), "Bạn không có quyền truy cập trang này")
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("10A1")
	stolen := map[string]string{}
	for k, v := range c.cookies {
		stolen[k] = v
	}

	require.Equal(t, "/login", location(c.get("/logout")))
	require.NotContains(t, c.cookies, auth.TokenCookie)

	replay := env.client(t)
	replay.cookies = stolen
	require.Equal(t, "/login", location(replay.get("/")))
}

func TestGuardIgnoresRoleInToken(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("10A1")

	claims := &auth.JWTClaims{}
	_, err := jwt.ParseWithClaims(c.cookies[auth.TokenCookie], claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	forge := func(subject string) string {
		forged := *claims
		forged.Role = models.RoleAdmin
		forged.Subject = subject
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forged).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return tok
	}

	// Same account, admin role claimed: the session still says user.
	c.cookies[auth.TokenCookie] = forge(claims.Subject)
	require.Equal(t, "/", location(c.get("/admin")))

	// Admin account claimed on a class session: not authenticated at all.
	c.cookies[auth.TokenCookie] = forge(fmt.Sprint(env.accounts[models.AdminUsername]))
	require.Equal(t, "/login", location(c.get("/admin")))
	require.Equal(t, "/login", location(c.get("/")))
}

func TestFoodIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.client(t)
	a.login("10A1")
	resp := a.post("/register-food", url.Values{"foodName": {"Bánh mì"}, "price": {"15000"}})
	require.Equal(t, "/register-food", location(resp))

	body := a.page("/register-food")
	require.Contains(t, body, "Đã thêm món ăn thành công!")
	require.Contains(t, body, "Bánh mì")
	require.Contains(t, body, "15.000đ")

	items, err := env.repo.ListFoodItemsByAccount(ctx, env.accounts["10A1"])
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 15000, items[0].Price)

	b := env.client(t)
	b.login("10A2")
	require.NotContains(t, b.page("/register-food"), "Bánh mì")

	resp = b.post(fmt.Sprintf("/delete-food/%d", items[0].ID), nil)
	require.Equal(t, "/register-food", location(resp))
	require.Contains(t, b.page("/register-food"), "Không tìm thấy món ăn")

	_, err = env.repo.GetFoodItem(ctx, items[0].ID)
	require.NoError(t, err, "another class cannot delete the item")

	admin := env.client(t)
	admin.login("ADMIN")
	resp = admin.post(fmt.Sprintf("/delete-food/%d", items[0].ID), nil)
	require.Equal(t, "/register-food", location(resp))
	_, err = env.repo.GetFoodItem(ctx, items[0].ID)
	require.NoError(t, err, "the admin deletes through /admin only")

	resp = a.post(fmt.Sprintf("/delete-food/%d", items[0].ID), nil)
	require.Equal(t, "/register-food", location(resp))
	require.Contains(t, a.page("/register-food"), "Đã xóa món ăn thành công")
	_, err = env.repo.GetFoodItem(ctx, items[0].ID)
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestStoredTextSurvivesLaterRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.client(t)
	a.login("10A1")
	a.post("/register-food", url.Values{"foodName": {"Xôi"}, "price": {"10000"}, "description": {"nếp cẩm"}})
	a.post("/register-rep", url.Values{
		"representativeName": {"Nguyễn A"},
		"bankNames":          {"VCB"},
		"accountNumbers":     {"0011"},
		"accountHolders":     {"NGUYEN A"},
	})

	b := env.client(t)
	b.login("10A2")
	for i := 0; i < 5; i++ {
		b.post("/register-food", url.Values{
			"foodName":    {strings.Repeat("9", 4)},
			"price":       {"9999"},
			"description": {strings.Repeat("z", 11)},
		})
	}

	items, err := env.repo.ListFoodItemsByAccount(ctx, env.accounts["10A1"])
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Xôi", items[0].Name)
	require.NotNil(t, items[0].Description)
	require.Equal(t, "nếp cẩm", *items[0].Description)

	rep, err := env.repo.GetRepresentative(ctx, env.accounts["10A1"])
	require.NoError(t, err)
	require.Equal(t, "Nguyễn A", rep.RepresentativeName)
	require.Equal(t, "NGUYEN A", rep.Accounts[0].AccountHolder)
}

func TestFoodPriceValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("10A1")

	for _, price := range []string{"-5", "abc"} {
		c.post("/register-food", url.Values{"foodName": {"Chè"}, "price": {price}})
		require.Contains(t, c.page("/register-food"), "Giá bán không hợp lệ")
	}
	c.post("/register-food", url.Values{"foodName": {"Chè"}, "price": {"12,000"}})

	items, err := env.repo.ListFoodItemsByAccount(context.Background(), env.accounts["10A1"])
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 12000, items[0].Price)
}

func TestRepresentativeReplace(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("10A1")

	resp := c.post("/register-rep", url.Values{
		"representativeName": {"Nguyễn A"},
		"bankNames[]":        {"A", "B"},
		"accountNumbers[]":   {"1", "2"},
		"accountHolders[]":   {"X", "X"},
		"isMainAccount":      {"1"},
	})
	require.Equal(t, "/", location(resp))

	c.post("/register-rep", url.Values{
		"representativeName": {"Nguyễn A"},
		"bankNames[]":        {"C"},
		"accountNumbers[]":   {"3"},
		"accountHolders[]":   {"Y"},
	})
	require.Contains(t, c.page("/"), "Đăng ký thông tin ngân hàng thành công!")

	rep, err := env.repo.GetRepresentative(context.Background(), env.accounts["10A1"])
	require.NoError(t, err)
	require.Len(t, rep.Accounts, 1)
	require.Equal(t, "C", rep.Accounts[0].BankName)
	require.True(t, rep.Accounts[0].IsMain)
}

func imageForm(t *testing.T, fields map[string]string, files map[string][2]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, f[0]))
		h.Set("Content-Type", f[1])
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

var studentFields = map[string]string{
	"fullName":    "Trần Văn B",
	"dob":         "2010-05-04",
	"cccdNumber":  "079210000001",
	"phoneNumber": "0909000001",
}

func TestStudentImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client(t)
	c.login("10A1")

	body, ct := imageForm(t, studentFields, map[string][2]string{
		"cccdFront": {"front.png", "image/png"},
		"cccdBack":  {"back.jpg", "image/jpeg"},
	})
	resp := c.do(httptestRequest(http.MethodPost, "/register-student", body, ct))
	require.Equal(t, "/register-student", location(resp))
	require.Contains(t, c.page("/register-student"), "Đăng ký học sinh thành công!")

	students, err := env.repo.ListStudentsByAccount(ctx, env.accounts["10A1"])
	require.NoError(t, err)
	require.Len(t, students, 1)
	paths := students[0].ImagePaths()
	require.Len(t, paths, 2)
	for _, p := range paths {
		require.FileExists(t, filepath.Join(env.uploadDir, strings.TrimPrefix(p, storage.PublicPrefix)))
	}
	require.Equal(t, http.StatusOK, c.get(paths[0]).StatusCode)

	other := env.client(t)
	other.login("10A2")
	other.post(fmt.Sprintf("/delete-student/%d", students[0].ID), nil)
	require.Contains(t, other.page("/register-student"), "Không tìm thấy học sinh")
	require.FileExists(t, filepath.Join(env.uploadDir, strings.TrimPrefix(paths[0], storage.PublicPrefix)))

	admin := env.client(t)
	admin.login("ADMIN")
	admin.post(fmt.Sprintf("/delete-student/%d", students[0].ID), nil)
	_, err = env.repo.GetStudent(ctx, students[0].ID)
	require.NoError(t, err)

	resp = c.post(fmt.Sprintf("/delete-student/%d", students[0].ID), nil)
	require.Equal(t, "/register-student", location(resp))
	require.Contains(t, c.page("/register-student"), "Đã xóa học sinh thành công")
	for _, p := range paths {
		_, err := os.Stat(filepath.Join(env.uploadDir, strings.TrimPrefix(p, storage.PublicPrefix)))
		require.True(t, os.IsNotExist(err), p)
	}
}

func TestStudentWithoutImages(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("10A1")

	body, ct := imageForm(t, studentFields, nil)
	c.do(httptestRequest(http.MethodPost, "/register-student", body, ct))

	students, err := env.repo.ListStudentsByAccount(context.Background(), env.accounts["10A1"])
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Empty(t, students[0].ImagePaths())

	c.post(fmt.Sprintf("/delete-student/%d", students[0].ID), nil)
	require.Contains(t, c.page("/register-student"), "Đã xóa học sinh thành công")
}

func TestStudentRejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("10A1")

	body, ct := imageForm(t, studentFields, map[string][2]string{
		"cccdFront": {"front.png", "image/png"},
		"cccdBack":  {"notes.txt", "text/plain"},
	})
	c.do(httptestRequest(http.MethodPost, "/register-student", body, ct))
	require.Contains(t, c.page("/register-student"), storage.MsgBadType)

	students, err := env.repo.ListStudentsByAccount(context.Background(), env.accounts["10A1"])
	require.NoError(t, err)
	require.Empty(t, students)

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	require.Empty(t, entries, "nothing is written when any upload is rejected")
}

func TestAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.client(t)
	user.login("10A1")
	user.post("/register-food", url.Values{"foodName": {"Xôi"}, "price": {"10000"}})
	user.post("/register-rep", url.Values{
		"representativeName": {"Nguyễn A"},
		"bankNames":          {"VCB"},
		"accountNumbers":     {"1"},
		"accountHolders":     {"X"},
	})

	admin := env.client(t)
	admin.login("ADMIN")

	t.Run("class detail", func(t *testing.T) {
		body := admin.page("/admin/class/10a1")
		require.Contains(t, body, "Xôi")
		require.Contains(t, body, "Nguyễn A")

		require.Equal(t, "/admin", location(admin.get("/admin/class/12Z9")))
		require.Contains(t, admin.page("/admin"), "Không tìm thấy lớp học")
	})

	t.Run("delete food returns to class page", func(t *testing.T) {
		items, err := env.repo.ListFoodItemsByAccount(ctx, env.accounts["10A1"])
		require.NoError(t, err)
		require.Len(t, items, 1)

		req := httptestRequest(http.MethodPost, fmt.Sprintf("/admin/delete-food/%d", items[0].ID), nil, "")
		req.Header.Set(fiber.HeaderReferer, "http://localhost/admin/class/10A1")
		resp := admin.do(req)
		require.Equal(t, "/admin/class/10A1", location(resp))
	})

	t.Run("delete representative", func(t *testing.T) {
		resp := admin.post("/admin/delete-rep/10a1", nil)
		require.Equal(t, "/admin", location(resp))
		require.Contains(t, admin.page("/admin"), "Đã xóa thông tin tài chính của lớp 10A1")

		_, err := env.repo.GetRepresentative(ctx, env.accounts["10A1"])
		require.ErrorIs(t, err, database.ErrNotFound)

		admin.post("/admin/delete-rep/10A1", nil)
		require.Contains(t, admin.page("/admin"), "Không tìm thấy thông tin tài chính của lớp 10A1")
	})
}

func TestRosterExportWithoutRegistrations(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("ADMIN")

	resp := c.get("/admin/export/representatives")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, reports.ContentType, resp.Header.Get(fiber.HeaderContentType))
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment; filename=DanhSachDaiDien_")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Danh sách đại diện lớp")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows[1:] {
		require.Equal(t, reports.StatusUnregistered, row[len(row)-1])
	}
}

func TestClassExport(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("ADMIN")

	resp := c.get("/admin/export/class/10a1/food")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "Menu_10A1_")

	resp = c.get("/admin/export/class/10A1/grades")
	require.Equal(t, "/admin/class/10A1", location(resp))
	require.Contains(t, c.page("/admin/class/10A1"), "Loại dữ liệu không hợp lệ")

	resp = c.get("/admin/export/class/12Z9/students")
	require.Equal(t, "/admin", location(resp))
}

func TestNotFoundPage(t *testing.T) {
	env := newTestEnv(t)
	resp := env.client(t).get("/does-not-exist")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Không tìm thấy trang")
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t)
	resp := env.client(t).get("/static/css/style.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "0", formatPrice(0))
	require.Equal(t, "999", formatPrice(999))
	require.Equal(t, "15.000", formatPrice(15000))
	require.Equal(t, "1.250.000", formatPrice(1250000))
	require.Equal(t, "-12.000", formatPrice(-12000))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	c.login("10A1")

	c.post("/change-password", url.Values{
		"currentPassword": {"wrong-one"}, "newPassword": {"moi2026"}, "confirmPassword": {"moi2026"},
	})
	require.Contains(t, c.page("/change-password"), "Mật khẩu hiện tại không chính xác")

	c.post("/change-password", url.Values{
		"currentPassword": {testPassword}, "newPassword": {"moi2026"}, "confirmPassword": {"khac2026"},
	})
	require.Contains(t, c.page("/change-password"), "Xác nhận mật khẩu không khớp")

	resp := c.post("/change-password", url.Values{
		"currentPassword": {testPassword}, "newPassword": {"moi2026"}, "confirmPassword": {"moi2026"},
	})
	require.Equal(t, "/", location(resp))
	require.Contains(t, c.page("/"), "Đổi mật khẩu thành công!")

	fresh := env.client(t)
	resp = fresh.post("/login", url.Values{"username": {"10A1"}, "password": {"moi2026"}})
	require.Equal(t, "/", location(resp))
}
