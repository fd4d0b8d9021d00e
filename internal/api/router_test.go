package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/pagecache"
	"github.com/d60-Lab/yatube/internal/query"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/internal/testutil"
)

const cookieName = "yatube_session"

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.TokenManager
	posts  repository.PostRepository
	media  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)

	posts := repository.NewPostRepository(db)
	groups := repository.NewGroupRepository(db)
	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	comments := repository.NewCommentRepository(db)

	mediaDir := t.TempDir()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	gate := auth.NewGate("/auth/login/")
	svc := handler.Services{
		Feeds:     service.NewFeedService(query.NewComposer(posts, groups, users), follows, pagecache.NewMemoryCache(time.Hour), 10),
		Posts:     service.NewPostService(posts, groups, comments, media.NewStorage(mediaDir), gate),
		Relations: service.NewRelationshipService(follows, users, gate, 10),
		Users:     service.NewUserService(users, tokens),
		Groups:    service.NewGroupService(groups),
	}
	r, err := NewRouter(Options{
		Handler:  handler.NewHandler(svc, tokens, gate, cookieName),
		Tokens:   tokens,
		Gate:     gate,
		Cookie:   cookieName,
		MediaDir: mediaDir,
	})
	require.NoError(t, err)
	return &testServer{t: t, db: db, router: r, tokens: tokens, posts: posts, media: mediaDir}
}

func (s *testServer) token(u *model.User) string {
	tok, err := s.tokens.Generate(u)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path string, body any, as *model.User) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(as))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Year    int             `json:"year"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

type feedBody struct {
	Listing string `json:"listing"`
	Page    struct {
		Items    []model.Post `json:"items"`
		Number   int          `json:"number"`
		NumPages int          `json:"num_pages"`
		Count    int          `json:"count"`
	} `json:"page"`
	Following bool `json:"following"`
}

func TestIndexPages(t *testing.T) {
	s := newTestServer(t)
	leo := testutil.User(t, s.db, "leo")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 13; i++ {
		testutil.Post(t, s.db, leo, nil, base.Add(time.Duration(i)*time.Minute), fmt.Sprintf("p%d", i))
	}

	for _, path := range []string{"/", "/api/v1/posts"} {
		w := s.do(http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var fb feedBody
		env := decode(t, w, &fb)
		assert.Equal(t, time.Now().Year(), env.Year)
		assert.Len(t, fb.Page.Items, 10)
		assert.Equal(t, "p13", fb.Page.Items[0].Text)
	}

	w := s.do(http.MethodGet, "/?page=2", nil, nil)
	var fb feedBody
	decode(t, w, &fb)
	assert.Equal(t, []string{"p3", "p2", "p1"}, testutil.Texts(fb.Page.Items))
}

func TestIndexCacheAndClear(t *testing.T) {
	s := newTestServer(t)
	leo := testutil.User(t, s.db, "leo")
	testutil.Post(t, s.db, leo, nil, time.Time{}, "first")

	before := s.do(http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, before.Code)

	w := s.do(http.MethodPost, "/api/v1/posts", gin.H{"text": "second"}, leo)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/profile/leo", w.Header().Get("Location"))

	stale := s.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, before.Body.String(), stale.Body.String())

	// 普通用户无权清缓存
	w = s.do(http.MethodPost, "/api/v1/feed/cache/clear", nil, leo)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fapi%2Fv1%2Ffeed%2Fcache%2Fclear", w.Header().Get("Location"))
	assert.Equal(t, before.Body.String(), s.do(http.MethodGet, "/", nil, nil).Body.String())

	admin := testutil.Staff(t, s.db, "admin")
	w = s.do(http.MethodPost, "/api/v1/feed/cache/clear", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	var fb feedBody
	decode(t, s.do(http.MethodGet, "/", nil, nil), &fb)
	assert.Equal(t, []string{"second", "first"}, testutil.Texts(fb.Page.Items))

	// 作者页不走缓存
	decode(t, s.do(http.MethodGet, "/api/v1/profile/leo", nil, nil), &fb)
	assert.Equal(t, 2, fb.Page.Count)
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	s := newTestServer(t)
	leo := testutil.User(t, s.db, "leo")
	p := testutil.Post(t, s.db, leo, nil, time.Time{}, "hi")

	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/v1/posts"},
		{http.MethodGet, "/api/v1/follow"},
		{http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/edit", p.ID)},
		{http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comment", p.ID)},
		{http.MethodPost, "/api/v1/profile/leo/follow"},
		{http.MethodPost, "/api/v1/profile/leo/unfollow"},
		{http.MethodPost, "/api/v1/groups"},
	}
	for _, tc := range cases {
		w := s.do(tc.method, tc.path, gin.H{"text": "x"}, nil)
		require.Equal(t, http.StatusFound, w.Code, tc.path)
		assert.Equal(t, "/auth/login/?next="+strings.ReplaceAll(tc.path, "/", "%2F"), w.Header().Get("Location"), tc.path)
	}
	cnt, err := s.posts.Find(repository.PostFilter{}).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)
}

func TestEditPostByOtherUser(t *testing.T) {
	s := newTestServer(t)
	leo := testutil.User(t, s.db, "leo")
	mallory := testutil.User(t, s.db, "mallory")
	p := testutil.Post(t, s.db, leo, nil, time.Time{}, "original")
	path := fmt.Sprintf("/api/v1/posts/%d/edit", p.ID)

	w := s.do(http.MethodPost, path, gin.H{"text": "hacked"}, mallory)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/api/v1/posts/%d", p.ID), w.Header().Get("Location"))

	w = s.do(http.MethodGet, path, nil, mallory)
	assert.Equal(t, http.StatusFound, w.Code)

	w = s.do(http.MethodPost, path, gin.H{"text": "edited"}, leo)
	require.Equal(t, http.StatusFound, w.Code)

	var detail struct {
		Post       model.Post `json:"post"`
		PostsCount int        `json:"posts_count"`
	}
	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", p.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &detail)
	assert.Equal(t, "edited", detail.Post.Text)
	assert.Equal(t, 1, detail.PostsCount)
}

func TestCommentFlow(t *testing.T) {
	s := newTestServer(t)
	leo := testutil.User(t, s.db, "leo")
	reader := testutil.User(t, s.db, "reader")
	p := testutil.Post(t, s.db, leo, nil, time.Time{}, "hi")

	w := s.do(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comment", p.ID), gin.H{"text": "great"}, reader)
	require.Equal(t, http.StatusFound, w.Code)

	var detail struct {
		Comments []model.Comment `json:"comments"`
	}
	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", p.ID), nil, nil), &detail)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "great", detail.Comments[0].Text)
}

func TestFollowFlow(t *testing.T) {
	s := newTestServer(t)
	leo := testutil.User(t, s.db, "leo")
	fan := testutil.User(t, s.db, "fan")
	testutil.Post(t, s.db, leo, nil, time.Time{}, "for fans")

	w := s.do(http.MethodPost, "/api/v1/profile/leo/follow", nil, fan)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/profile/leo", w.Header().Get("Location"))

	var fb feedBody
	decode(t, s.do(http.MethodGet, "/api/v1/follow", nil, fan), &fb)
	assert.Equal(t, []string{"for fans"}, testutil.Texts(fb.Page.Items))

	decode(t, s.do(http.MethodGet, "/api/v1/profile/leo", nil, fan), &fb)
	assert.True(t, fb.Following)

	var fans struct {
		Items []model.User `json:"items"`
	}
	decode(t, s.do(http.MethodGet, "/api/v1/relations/leo/fans", nil, nil), &fans)
	require.Len(t, fans.Items, 1)
	assert.Equal(t, "fan", fans.Items[0].Username)

	w = s.do(http.MethodPost, "/api/v1/profile/leo/unfollow", nil, fan)
	require.Equal(t, http.StatusFound, w.Code)
	decode(t, s.do(http.MethodGet, "/api/v1/follow", nil, fan), &fb)
	assert.Empty(t, fb.Page.Items)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)
	testutil.User(t, s.db, "leo")
	for _, path := range []string{
		"/api/v1/groups/missing/posts",
		"/api/v1/groups/missing",
		"/api/v1/profile/ghost",
		"/api/v1/posts/999",
		"/api/v1/posts/abc",
		"/api/v1/relations/ghost/following",
	} {
		w := s.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w := s.do(http.MethodPost, "/api/v1/profile/ghost/follow", nil, &model.User{ID: 1, Username: "leo"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignUpAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/signup/", gin.H{"username": "leo", "email": "leo@example.com", "password": "war-and-peace"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/auth/signup/", gin.H{"username": "leo", "password": "war-and-peace"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/login/", gin.H{"username": "leo", "password": "nope-nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login/", gin.H{"username": "leo", "password": "war-and-peace", "next": "/api/v1/follow"}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/follow", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/follow", nil)
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// 站外 next 被忽略
	w = s.do(http.MethodPost, "/auth/login/", gin.H{"username": "leo", "password": "war-and-peace", "next": "//evil.example"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
	}
	decode(t, w, &body)
	assert.NotEmpty(t, body.Token)
}

func TestPasswordChange(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/signup/", gin.H{"username": "leo", "password": "war-and-peace"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var leo model.User
	decode(t, w, &leo)

	form := gin.H{"old_password": "war-and-peace", "new_password1": "anna-karenina", "new_password2": "anna-karenina"}
	w = s.do(http.MethodPost, "/auth/password_change/", form, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fauth%2Fpassword_change%2F", w.Header().Get("Location"))

	mismatch := gin.H{"old_password": "war-and-peace", "new_password1": "anna-karenina", "new_password2": "resurrection"}
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/auth/password_change/", mismatch, &leo).Code)
	wrongOld := gin.H{"old_password": "nope-nope", "new_password1": "anna-karenina", "new_password2": "anna-karenina"}
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/auth/password_change/", wrongOld, &leo).Code)

	w = s.do(http.MethodPost, "/auth/password_change/", form, &leo)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/auth/password_change/done/", w.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/auth/password_change/done/", nil, &leo).Code)

	w = s.do(http.MethodPost, "/auth/login/", gin.H{"username": "leo", "password": "war-and-peace"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodPost, "/auth/login/", gin.H{"username": "leo", "password": "anna-karenina"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGroupEndpoints(t *testing.T) {
	s := newTestServer(t)
	leo := testutil.User(t, s.db, "leo")
	admin := testutil.Staff(t, s.db, "admin")

	w := s.do(http.MethodPost, "/api/v1/groups", gin.H{"title": "Cats", "slug": "bad slug!"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/groups", gin.H{"title": "Cats", "slug": "cats"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)

	var groups []model.Group
	decode(t, s.do(http.MethodGet, "/api/v1/groups", nil, nil), &groups)
	require.Len(t, groups, 1)

	w = s.do(http.MethodPost, "/api/v1/posts", gin.H{"text": "meow", "group": groups[0].ID}, leo)
	require.Equal(t, http.StatusFound, w.Code)
	var fb feedBody
	decode(t, s.do(http.MethodGet, "/api/v1/groups/cats/posts", nil, nil), &fb)
	assert.Equal(t, []string{"meow"}, testutil.Texts(fb.Page.Items))

	w = s.do(http.MethodDelete, "/api/v1/groups/cats", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/v1/groups/cats/posts", nil, nil).Code)
	decode(t, s.do(http.MethodGet, "/api/v1/profile/leo", nil, nil), &fb)
	assert.Equal(t, []string{"meow"}, testutil.Texts(fb.Page.Items))
}

func TestGroupManagementRequiresStaff(t *testing.T) {
	s := newTestServer(t)
	rando := testutil.User(t, s.db, "rando")
	g := testutil.Group(t, s.db, "cats")
	p := testutil.Post(t, s.db, testutil.User(t, s.db, "leo"), g, time.Time{}, "meow")

	w := s.do(http.MethodDelete, "/api/v1/groups/cats", nil, rando)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fapi%2Fv1%2Fgroups%2Fcats", w.Header().Get("Location"))

	w = s.do(http.MethodPost, "/api/v1/groups", gin.H{"title": "Dogs", "slug": "dogs"}, rando)
	require.Equal(t, http.StatusFound, w.Code)

	var left int64
	require.NoError(t, s.db.Model(&model.Group{}).Count(&left).Error)
	assert.Equal(t, int64(1), left)
	got, err := s.posts.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, g.ID, *got.GroupID)
}

func TestCreatePostWithImage(t *testing.T) {
	s := newTestServer(t)
	leo := testutil.User(t, s.db, "leo")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", "with image"))
	fw, err := mw.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = fw.Write([]byte("GIF89a"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(leo))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	all, err := s.posts.Find(repository.PostFilter{}).All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, strings.HasSuffix(all[0].Image, ".gif"))
}

func TestMediaServesFilesWithoutListing(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(s.media, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.media, "posts", "a.gif"), []byte("GIF89a"), 0o644))

	w := s.do(http.MethodGet, "/media/posts/a.gif", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GIF89a", w.Body.String())

	w = s.do(http.MethodGet, "/media/posts/", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "a.gif")
}

func TestOpsEndpoints(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", nil, nil).Code)
	for _, path := range []string{"/about/author/", "/about/tech/"} {
		w := s.do(http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, time.Now().Year(), decode(t, w, nil).Year)
	}
	w := s.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yatube_http_requests_total")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
