package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/minicrm/apps/api/echo"
	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/dashboard"
	"github.com/trezcool/minicrm/core/feedback"
	"github.com/trezcool/minicrm/core/order"
	"github.com/trezcool/minicrm/core/product"
	"github.com/trezcool/minicrm/core/student"
	"github.com/trezcool/minicrm/core/user"
	logsvc "github.com/trezcool/minicrm/services/logger"
	"github.com/trezcool/minicrm/storage/database/inmem"
	"github.com/trezcool/minicrm/storage/session"
	"github.com/trezcool/minicrm/storage/uploads"
	"github.com/trezcool/minicrm/testutil"
)

const (
	cookieName     = "minicrm_session"
	headerLocation = "Location"
)

type feedbackQuerier interface {
	feedback.Repository
	QueryAllFeedback(ctx context.Context) ([]feedback.Feedback, error)
}

// testApp is a Server backed by in-memory storage, driven like a browser:
// it keeps the session cookie between requests.
type testApp struct {
	app      Server
	conf     *core.Config
	sessions *session.Manager
	token    string

	usrRepo      user.Repository
	studentRepo  student.Repository
	productRepo  product.Repository
	orderRepo    order.Repository
	feedbackRepo feedbackQuerier
}

func setup(t *testing.T) *testApp {
	return setupWith(t, nil)
}

// setupWith lets wrapProducts replace the product repository of the app.
func setupWith(t *testing.T, wrapProducts func(product.Repository) product.Repository) *testApp {
	dir := t.TempDir()
	conf := &core.Config{
		Env:       "TEST",
		AppName:   "MiniCRM",
		TestMode:  true,
		SecretKey: "test-secret",
		Server:    core.ServerConfig{DisableReqLogs: true},
		Session:   core.SessionConfig{Store: "memory", CookieName: cookieName},
		Uploads: core.UploadsConfig{
			Dir:               filepath.Join(dir, "uploads"),
			URLPrefix:         "uploads",
			AllowedExtensions: []string{"png", "jpg", "jpeg", "gif"},
		},
		Export:     core.ExportConfig{Path: filepath.Join(dir, "students_export.csv")},
		Pagination: core.PaginationConfig{PageSize: 5},
	}

	// set up DB & repos
	db, err := inmemdb.Open()
	require.NoError(t, err)
	ta := &testApp{
		conf:         conf,
		sessions:     session.NewManager(session.NewMemoryStore(), conf.SecretKey, conf.AppName),
		usrRepo:      inmemdb.NewUserRepository(db),
		studentRepo:  inmemdb.NewStudentRepository(db),
		productRepo:  inmemdb.NewProductRepository(db),
		orderRepo:    inmemdb.NewOrderRepository(db),
		feedbackRepo: inmemdb.NewFeedbackRepository(db),
	}

	if wrapProducts != nil {
		ta.productRepo = wrapProducts(ta.productRepo)
	}

	// set up services
	productSvc := product.NewService(ta.productRepo, conf.Pagination.PageSize)
	deps := &Deps{
		Conf:        conf,
		Logger:      logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
		Sessions:    ta.sessions,
		Uploads:     uploads.NewStore(conf.Uploads.Dir, conf.Uploads.URLPrefix, conf.Uploads.AllowedExtensions),
		UserSvc:     user.NewService(ta.usrRepo),
		StudentSvc:  student.NewService(ta.studentRepo, conf.Pagination.PageSize),
		ProductSvc:  productSvc,
		OrderSvc:    order.NewService(ta.orderRepo, productSvc),
		FeedbackSvc: feedback.NewService(ta.feedbackRepo),
	}
	deps.DashboardSvc = dashboard.NewService(deps.UserSvc, deps.StudentSvc, deps.ProductSvc, deps.OrderSvc)
	deps.Validate, deps.Translator = core.NewValidator()

	// set up server
	ta.app = NewServer(deps)
	return ta
}

type httpTest struct {
	name         string
	method       string
	path         string
	form         url.Values
	wantCode     int
	wantLocation string
	wantFlash    *session.Flash
}

func flash(category, msg string) *session.Flash {
	return &session.Flash{Category: category, Message: msg}
}

func (ta *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	if ta.token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: ta.token})
	}
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			ta.token = c.Value
		}
	}
	return rec
}

func (ta *testApp) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return ta.serve(req)
}

func (ta *testApp) get(path string) *httptest.ResponseRecorder {
	return ta.do(http.MethodGet, path, nil)
}

func (ta *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return ta.do(http.MethodPost, path, form)
}

// postMultipart sends fields and, if filename is not empty, an "image" file.
func (ta *testApp) postMultipart(t *testing.T, path string, fields url.Values, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ta.serve(req)
}

// session returns the stored browser session, without consuming its flashes.
func (ta *testApp) session(t *testing.T) *session.Session {
	sess, err := ta.sessions.Load(context.Background(), ta.token)
	require.NoError(t, err)
	return sess
}

// lastFlash returns the most recent pending flash, if any.
func (ta *testApp) lastFlash(t *testing.T) *session.Flash {
	flashes := ta.session(t).Flashes
	if len(flashes) == 0 {
		return nil
	}
	return &flashes[len(flashes)-1]
}

func (ta *testApp) login(t *testing.T, email, pwd string) {
	rec := ta.post("/login", url.Values{"email": {email}, "password": {pwd}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get(headerLocation))
}

// loginAs creates a user and logs it in.
func (ta *testApp) loginAs(t *testing.T, email string, role user.Role) user.User {
	usr := testutil.CreateUser(t, ta.usrRepo, "User "+email, email, "secret1", role)
	ta.login(t, email, "secret1")
	return usr
}

// page decodes a page answered as JSON.
func page(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	return data
}

func (ta *testApp) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	var rec *httptest.ResponseRecorder
	if method == http.MethodPost {
		rec = ta.post(tt.path, tt.form)
	} else {
		rec = ta.do(method, tt.path, tt.form)
	}

	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusFound
	}
	assert.Equal(t, wantCode, rec.Code, rec.Body.String())
	if tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, rec.Header().Get(headerLocation))
	}
	if tt.wantFlash != nil {
		assert.Equal(t, tt.wantFlash, ta.lastFlash(t))
	}
	return rec
}
