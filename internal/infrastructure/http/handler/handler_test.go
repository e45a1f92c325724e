package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expertteam/expert/internal/application/auth"
	"github.com/expertteam/expert/internal/application/todo"
	"github.com/expertteam/expert/internal/application/user"
	"github.com/expertteam/expert/internal/domain"
	mw "github.com/expertteam/expert/internal/infrastructure/http/middleware"
	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// stubServices records the last call and returns canned results.
type stubServices struct {
	signupInput auth.SignupInput
	token       string
	err         error

	searchInput  domain.TodoSearchCriteriaInput
	searchParams todo.PageParams
	searchPage   *domain.Page[domain.TodoSummary]

	listFilter domain.TodoListFilter
	todo       *domain.TodoWithOwner
	todoPage   *domain.Page[domain.TodoWithOwner]

	manager  *domain.ManagerWithUser
	logs     []domain.ManagerLog
	managers []domain.ManagerWithUser
	removed  [2]string

	comment  *domain.CommentWithAuthor
	comments []domain.CommentWithAuthor

	user     *domain.User
	users    []domain.User
	upload   user.ImageUpload
	uploaded []byte
	imageURL string
	presign  *user.PresignedUpload
}

func (s *stubServices) Signup(_ context.Context, input auth.SignupInput) (string, error) {
	s.signupInput = input
	return s.token, s.err
}

func (s *stubServices) Signin(context.Context, string, string) (string, error) {
	return s.token, s.err
}

func (s *stubServices) CreateTodo(_ context.Context, owner domain.AuthUser, title, contents string) (*domain.TodoWithOwner, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.TodoWithOwner{
		Todo:  domain.Todo{ID: "t-1", Title: title, Contents: contents, UserID: owner.ID},
		Owner: domain.UserSummary{ID: owner.ID, Email: owner.Email, Nickname: owner.Nickname},
	}, nil
}

func (s *stubServices) GetTodo(context.Context, string) (*domain.TodoWithOwner, error) {
	return s.todo, s.err
}

func (s *stubServices) ListTodos(_ context.Context, filter domain.TodoListFilter, _ todo.PageParams) (*domain.Page[domain.TodoWithOwner], error) {
	s.listFilter = filter
	return s.todoPage, s.err
}

func (s *stubServices) SearchTodos(_ context.Context, input domain.TodoSearchCriteriaInput, params todo.PageParams) (*domain.Page[domain.TodoSummary], error) {
	s.searchInput = input
	s.searchParams = params
	return s.searchPage, s.err
}

func (s *stubServices) AssignManager(context.Context, domain.AuthUser, string, string) (*domain.ManagerWithUser, error) {
	return s.manager, s.err
}

func (s *stubServices) ListManagers(context.Context, string) ([]domain.ManagerWithUser, error) {
	return s.managers, s.err
}

func (s *stubServices) RemoveManager(_ context.Context, _ domain.AuthUser, todoID, managerID string) error {
	s.removed = [2]string{todoID, managerID}
	return s.err
}

func (s *stubServices) AddComment(context.Context, domain.AuthUser, string, string) (*domain.CommentWithAuthor, error) {
	return s.comment, s.err
}

func (s *stubServices) ListComments(context.Context, string) ([]domain.CommentWithAuthor, error) {
	return s.comments, s.err
}

func (s *stubServices) GetUser(context.Context, string) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubServices) ChangePassword(context.Context, string, string, string) error {
	return s.err
}

func (s *stubServices) ChangeRole(context.Context, string, string) error {
	return s.err
}

func (s *stubServices) SearchByNickname(context.Context, string) ([]domain.User, error) {
	return s.users, s.err
}

func (s *stubServices) UploadProfileImage(_ context.Context, _ string, upload user.ImageUpload) (string, error) {
	s.upload = upload
	s.uploaded, _ = io.ReadAll(upload.Body)
	return s.imageURL, s.err
}

func (s *stubServices) ProfileImageURL(context.Context, string) (string, error) {
	return s.imageURL, s.err
}

func (s *stubServices) ManagerLogs(context.Context, string) ([]domain.ManagerLog, error) {
	return s.logs, s.err
}

func (s *stubServices) PresignProfileImageUpload(context.Context, string) (*user.PresignedUpload, error) {
	return s.presign, s.err
}

var alice = domain.AuthUser{ID: "u-1", Email: "alice@example.com", Nickname: "alice", Role: domain.UserRoleUser}

// newTestRouter mounts the handlers with the caller already authenticated as alice.
func newTestRouter(s *stubServices) http.Handler {
	h := New(Services{Auth: s, Todos: s, Managers: s, Audit: s, Comments: s, Users: s})

	r := chi.NewRouter()
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/signin", h.Signin)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(mw.WithAuthUser(req.Context(), alice)))
			})
		})
		r.Post("/todos", h.CreateTodo)
		r.Get("/todos", h.ListTodos)
		r.Get("/todos/search", h.SearchTodos)
		r.Get("/todos/{todoId}", h.GetTodo)
		r.Post("/todos/{todoId}/managers", h.AssignManager)
		r.Get("/todos/{todoId}/managers", h.ListManagers)
		r.Delete("/todos/{todoId}/managers/{managerId}", h.RemoveManager)
		r.Get("/admin/todos/{todoId}/manager-logs", h.ManagerLogs)
		r.Post("/todos/{todoId}/comments", h.AddComment)
		r.Get("/todos/{todoId}/comments", h.ListComments)
		r.Put("/users", h.ChangePassword)
		r.Get("/users/search", h.SearchUsers)
		r.Get("/users/{userId}", h.GetUser)
		r.Post("/users/profile-image", h.UploadProfileImage)
		r.Get("/users/profile-image", h.GetProfileImage)
		r.Post("/users/profile-image/presigned-url", h.PresignProfileImage)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestSignup(t *testing.T) {
	s := &stubServices{token: "jwt"}
	w := do(t, newTestRouter(s), http.MethodPost, "/auth/signup",
		`{"email":"a@b.com","password":"Passw0rd!","nickname":"alice","userRole":"USER"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "jwt", decodeBody[tokenResponse](t, w).BearerToken)
	assert.Equal(t, auth.SignupInput{Email: "a@b.com", Password: "Passw0rd!", Nickname: "alice", Role: "USER"}, s.signupInput)
}

func TestSignup_ValidationFailuresListFields(t *testing.T) {
	w := do(t, newTestRouter(&stubServices{}), http.MethodPost, "/auth/signup",
		`{"email":"not-an-email","password":"short","nickname":"","userRole":"ROOT"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[response.ErrorResponse](t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password", "nickname", "userRole"}, fields)
}

func TestSignup_RejectsMalformedJSON(t *testing.T) {
	tests := map[string]string{
		"syntax":        `{"email":`,
		"unknown field": `{"email":"a@b.com","password":"Passw0rd","nickname":"a","userRole":"USER","admin":true}`,
		"trailing data": `{"email":"a@b.com","password":"Passw0rd","nickname":"a","userRole":"USER"}{}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, newTestRouter(&stubServices{}), http.MethodPost, "/auth/signup", body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decodeBody[response.ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestSignin_InvalidCredentials(t *testing.T) {
	s := &stubServices{err: domain.ErrInvalidCredentials}
	w := do(t, newTestRouter(s), http.MethodPost, "/auth/signin", `{"email":"a@b.com","password":"x"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateTodo_UsesCaller(t *testing.T) {
	w := do(t, newTestRouter(&stubServices{}), http.MethodPost, "/todos", `{"title":"Buy milk","contents":"2L"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody[todoResponse](t, w)
	assert.Equal(t, "Buy milk", resp.Title)
	assert.Equal(t, alice.ID, resp.User.ID)
	assert.Equal(t, "alice", resp.User.Nickname)
}

func TestCreateTodo_WeatherUnavailable(t *testing.T) {
	s := &stubServices{err: domain.ErrWeatherUnavailable}
	w := do(t, newTestRouter(s), http.MethodPost, "/todos", `{"title":"Buy milk","contents":"2L"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetTodo_NotFound(t *testing.T) {
	s := &stubServices{err: domain.ErrTodoNotFound}
	w := do(t, newTestRouter(s), http.MethodGet, "/todos/missing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTodos_PassesFilters(t *testing.T) {
	s := &stubServices{todoPage: &domain.Page[domain.TodoWithOwner]{Content: []domain.TodoWithOwner{}, Page: 1, Size: 10}}
	w := do(t, newTestRouter(s), http.MethodGet, "/todos?weather=Sunny&startDate=2024-01-01T00:00:00&endDate=2024-01-31T23:59:59Z", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sunny", s.listFilter.Weather)
	require.NotNil(t, s.listFilter.ModifiedFrom)
	require.NotNil(t, s.listFilter.ModifiedTo)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *s.listFilter.ModifiedFrom)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), *s.listFilter.ModifiedTo)
}

func TestSearchTodos(t *testing.T) {
	s := &stubServices{searchPage: &domain.Page[domain.TodoSummary]{
		Content: []domain.TodoSummary{
			{Title: "Buy bread", ManagerCount: 0, CommentCount: 0},
			{Title: "Buy milk", ManagerCount: 1, CommentCount: 2},
		},
		Page:  1,
		Size:  2,
		Total: 3,
	}}

	w := do(t, newTestRouter(s), http.MethodGet,
		"/todos/search?title=buy&managerNickname=ali&startDate=2024-01-01T09:00:00%2B09:00&page=1&size=2", "")

	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "buy", s.searchInput.Title)
	assert.Equal(t, "ali", s.searchInput.ManagerNickname)
	require.NotNil(t, s.searchInput.StartDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *s.searchInput.StartDate)
	assert.Nil(t, s.searchInput.EndDate)
	require.NotNil(t, s.searchParams.Page)
	require.NotNil(t, s.searchParams.Size)
	assert.Equal(t, 1, *s.searchParams.Page)
	assert.Equal(t, 2, *s.searchParams.Size)

	resp := decodeBody[pageResponse[todoSummaryResponse]](t, w)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, int64(2), resp.TotalPages)
	require.Len(t, resp.Content, 2)
	assert.Equal(t, todoSummaryResponse{Title: "Buy milk", ManagerCount: 1, CommentCount: 2}, resp.Content[1])
}

func TestSearchTodos_NoParamsMeansNoFilters(t *testing.T) {
	s := &stubServices{searchPage: &domain.Page[domain.TodoSummary]{Content: []domain.TodoSummary{}, Page: 1, Size: 10}}
	w := do(t, newTestRouter(s), http.MethodGet, "/todos/search", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.TodoSearchCriteriaInput{}, s.searchInput)
	assert.Nil(t, s.searchParams.Page)
	assert.Nil(t, s.searchParams.Size)
	assert.JSONEq(t, `{"content":[],"page":1,"size":10,"total":0,"totalPages":0}`, w.Body.String())
}

func TestSearchTodos_BadQueryParams(t *testing.T) {
	w := do(t, newTestRouter(&stubServices{}), http.MethodGet, "/todos/search?page=one&startDate=yesterday", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[response.ErrorResponse](t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "startDate", resp.Error.Details[0].Field)
	assert.Equal(t, "page", resp.Error.Details[1].Field)
}

func TestSearchTodos_PageOutOfRange(t *testing.T) {
	s := &stubServices{err: domain.ErrInvalidPageSize}
	w := do(t, newTestRouter(s), http.MethodGet, "/todos/search?size=1000", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody[response.ErrorResponse](t, w).Error.Code)
}

func TestSearchTodos_StorageFailureIs500(t *testing.T) {
	s := &stubServices{err: assert.AnError}
	w := do(t, newTestRouter(s), http.MethodGet, "/todos/search?title=x", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestAssignManager(t *testing.T) {
	s := &stubServices{manager: &domain.ManagerWithUser{
		Manager: domain.Manager{ID: "m-1"},
		User:    domain.UserSummary{ID: "u-2", Nickname: "bob"},
	}}
	w := do(t, newTestRouter(s), http.MethodPost, "/todos/t-1/managers",
		`{"managerUserId":"0190c3a4-9b6e-7c3d-8a1f-2b3c4d5e6f70"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody[managerResponse](t, w)
	assert.Equal(t, "m-1", resp.ID)
	assert.Equal(t, "bob", resp.User.Nickname)
}

func TestAssignManager_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"invalid uuid", `{"managerUserId":"nope"}`, nil, http.StatusBadRequest},
		{"not owner", `{"managerUserId":"0190c3a4-9b6e-7c3d-8a1f-2b3c4d5e6f70"}`, domain.ErrNotTodoOwner, http.StatusForbidden},
		{"self", `{"managerUserId":"0190c3a4-9b6e-7c3d-8a1f-2b3c4d5e6f70"}`, domain.ErrSelfAssignment, http.StatusBadRequest},
		{"duplicate", `{"managerUserId":"0190c3a4-9b6e-7c3d-8a1f-2b3c4d5e6f70"}`, domain.ErrManagerAlreadyAssigned, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestRouter(&stubServices{err: tt.err}), http.MethodPost, "/todos/t-1/managers", tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRemoveManager(t *testing.T) {
	s := &stubServices{}
	w := do(t, newTestRouter(s), http.MethodDelete, "/todos/t-1/managers/m-9", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, [2]string{"t-1", "m-9"}, s.removed)
}

func TestListManagers_EmptyIsArray(t *testing.T) {
	w := do(t, newTestRouter(&stubServices{}), http.MethodGet, "/todos/t-1/managers", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestManagerLogs(t *testing.T) {
	msg := domain.ErrSelfAssignment.Error()
	s := &stubServices{logs: []domain.ManagerLog{
		{ID: "l-1", TodoID: "t-1", RequestUserID: "u-1", ManagerUserID: "u-2", Status: domain.ManagerLogSuccess},
		{ID: "l-2", TodoID: "t-1", RequestUserID: "u-1", ManagerUserID: "u-1", Status: domain.ManagerLogFailure, ErrorMessage: &msg},
	}}
	w := do(t, newTestRouter(s), http.MethodGet, "/admin/todos/t-1/manager-logs", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "SUCCESS", got[0]["status"])
	assert.NotContains(t, got[0], "errorMessage")
	assert.Equal(t, "FAILURE", got[1]["status"])
	assert.Equal(t, msg, got[1]["errorMessage"])
}

func TestComments(t *testing.T) {
	s := &stubServices{
		comment: &domain.CommentWithAuthor{
			Comment: domain.Comment{ID: "c-1", Contents: "soon"},
			Author:  domain.UserSummary{ID: alice.ID, Nickname: "alice"},
		},
	}
	s.comments = []domain.CommentWithAuthor{*s.comment}
	h := newTestRouter(s)

	w := do(t, h, http.MethodPost, "/todos/t-1/comments", `{"contents":"soon"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "soon", decodeBody[commentResponse](t, w).Contents)

	w = do(t, h, http.MethodGet, "/todos/t-1/comments", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]commentResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].User.Nickname)
}

func TestUsers(t *testing.T) {
	s := &stubServices{
		user:  &domain.User{ID: "u-2", Email: "bob@example.com", Nickname: "bob", PasswordHash: "secret"},
		users: []domain.User{{ID: "u-2", Email: "bob@example.com", Nickname: "bob"}},
	}
	h := newTestRouter(s)

	w := do(t, h, http.MethodGet, "/users/u-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u-2","email":"bob@example.com","nickname":"bob"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/users/search?nickname=bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]userResponse](t, w), 1)

	w = do(t, h, http.MethodPut, "/users", `{"oldPassword":"Passw0rd","newPassword":"Passw0rd2"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestChangePassword_WeakPassword(t *testing.T) {
	s := &stubServices{err: domain.ErrWeakPassword}
	w := do(t, newTestRouter(s), http.MethodPut, "/users", `{"oldPassword":"Passw0rd","newPassword":"weakweak"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[response.ErrorResponse](t, w)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "newPassword", resp.Error.Details[0].Field)
}

func TestUploadProfileImage(t *testing.T) {
	s := &stubServices{imageURL: "https://files/profile-images/x_me.png"}

	var body bytes.Buffer
	mp := multipart.NewWriter(&body)
	part, err := mp.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image"; filename="me.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mp.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/profile-image", &body)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	w := httptest.NewRecorder()
	newTestRouter(s).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, s.imageURL, decodeBody[profileImageResponse](t, w).ProfileImageURL)
	assert.Equal(t, "me.png", s.upload.Filename)
	assert.Equal(t, "image/png", s.upload.ContentType)
	assert.Equal(t, int64(len("png-bytes")), s.upload.Size)
	assert.Equal(t, []byte("png-bytes"), s.uploaded)
}

func TestUploadProfileImage_MissingFile(t *testing.T) {
	var body bytes.Buffer
	mp := multipart.NewWriter(&body)
	require.NoError(t, mp.WriteField("other", "x"))
	require.NoError(t, mp.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/profile-image", &body)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	w := httptest.NewRecorder()
	newTestRouter(&stubServices{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody[response.ErrorResponse](t, w).Error.Code)
}

func TestProfileImage_NotFound(t *testing.T) {
	s := &stubServices{err: domain.ErrProfileImageNotFound}
	w := do(t, newTestRouter(s), http.MethodGet, "/users/profile-image", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPresignProfileImage(t *testing.T) {
	s := &stubServices{presign: &user.PresignedUpload{URL: "https://signed", Key: "profile-images/x_me.png"}}
	w := do(t, newTestRouter(s), http.MethodPost, "/users/profile-image/presigned-url?filename=me.png", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, presignedURLResponse{PresignedURL: "https://signed", Key: "profile-images/x_me.png"},
		decodeBody[presignedURLResponse](t, w))
}

func TestHandlers_WithoutCallerAre401(t *testing.T) {
	h := New(Services{Todos: &stubServices{}})
	w := httptest.NewRecorder()
	h.CreateTodo(w, httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParseDateTime(t *testing.T) {
	got, err := parseDateTime("2024-03-01T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), got)

	got, err = parseDateTime("2024-03-01T10:00:00.5-02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 500_000_000, time.UTC), got)

	_, err = parseDateTime("2024-03-01")
	require.ErrorIs(t, err, domain.ErrInvalidDateFormat)
}
