package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "learning-service")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthMiddleware_RejectionCodes(t *testing.T) {
	srv := newTestServer(t)
	user, _ := srv.createUser(t, "Student", models.RoleStudent)

	expired, err := auth.NewTokenManager("handler-secret", -time.Minute).Issue(user.ID, user.Role)
	require.NoError(t, err)
	forged, err := auth.NewTokenManager("another-secret", time.Hour).Issue(user.ID, user.Role)
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
		code   string
	}{
		{"no cookie", nil, "missing"},
		{"garbage token", &http.Cookie{Name: auth.CookieName, Value: "not-a-jwt"}, "malformed"},
		{"wrong signing key", &http.Cookie{Name: auth.CookieName, Value: forged}, "malformed"},
		{"expired token", &http.Cookie{Name: auth.CookieName, Value: expired}, "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, "/api/v1/user/profile", nil, tt.cookie)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestAuthMiddleware_AcceptsBearerHeader(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := srv.createUser(t, "Student", models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUser_RegisterLoginProfile(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/user/register", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "secret1",
		"role":     "instructor",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret1")

	w = srv.do(t, http.MethodPost, "/api/v1/user/register", map[string]string{
		"name":     "Ada Again",
		"email":    "ada@example.com",
		"password": "secret1",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/user/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/user/login", map[string]string{
		"email":    "ada@example.com",
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	w = srv.do(t, http.MethodGet, "/api/v1/user/profile", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.User
	decodeData(t, w, &profile)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.Equal(t, models.RoleInstructor, profile.Role)

	w = srv.do(t, http.MethodGet, "/api/v1/user/logout", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	}
}

func TestCourse_PublishRequiresExplicitParameter(t *testing.T) {
	srv := newTestServer(t)
	_, teacher := srv.createUser(t, "Teacher", models.RoleInstructor)

	w := srv.do(t, http.MethodPost, "/api/v1/courses", map[string]string{
		"courseTitle": "Go in Practice",
		"category":    "Programming",
	}, teacher)
	require.Equal(t, http.StatusCreated, w.Code)
	var course models.Course
	decodeData(t, w, &course)

	for _, path := range []string{
		"/api/v1/courses/" + course.ID,
		"/api/v1/courses/" + course.ID + "?publish=",
		"/api/v1/courses/" + course.ID + "?publish=yes",
	} {
		w = srv.do(t, http.MethodPatch, path, nil, teacher)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w = srv.do(t, http.MethodGet, "/api/v1/courses/"+course.ID, nil, teacher)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &course)
	assert.False(t, course.IsPublished)

	w = srv.do(t, http.MethodPatch, "/api/v1/courses/"+course.ID+"?publish=true", nil, teacher)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPatch, "/api/v1/courses/"+course.ID+"?publish=true", nil, teacher)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/courses/published", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var published []models.Course
	decodeData(t, w, &published)
	require.Len(t, published, 1)
	assert.Equal(t, course.ID, published[0].ID)
}

func TestCourse_StudentCannotCreate(t *testing.T) {
	srv := newTestServer(t)
	_, student := srv.createUser(t, "Student", models.RoleStudent)

	w := srv.do(t, http.MethodPost, "/api/v1/courses", map[string]string{
		"courseTitle": "Go in Practice",
		"category":    "Programming",
	}, student)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCourse_MultipartUpdate(t *testing.T) {
	srv := newTestServer(t)
	_, teacher := srv.createUser(t, "Teacher", models.RoleInstructor)

	w := srv.do(t, http.MethodPost, "/api/v1/courses", map[string]string{
		"courseTitle": "Go in Practice",
		"category":    "Programming",
	}, teacher)
	require.Equal(t, http.StatusCreated, w.Code)
	var course models.Course
	decodeData(t, w, &course)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("subTitle", "Concurrency and tooling"))
	require.NoError(t, form.WriteField("coursePrice", "1999"))
	part, err := form.CreateFormFile("courseThumbnail", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/courses/"+course.ID, &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(teacher)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &course)
	assert.Equal(t, "Concurrency and tooling", course.Subtitle)
	assert.Equal(t, 1999.0, course.Price)
	assert.Equal(t, "https://cdn.test/images/cover.png", course.ThumbnailURL)
	assert.Equal(t, "Go in Practice", course.Title)
}

func postWebhook(srv *testServer, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func signWebhook(payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	}).Header
}

func checkoutCompletedPayload(sessionID string) []byte {
	return []byte(`{
		"id": "evt_handler",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "` + sessionID + `", "object": "checkout.session", "amount_total": 250000}}
	}`)
}

func TestWebhook_Responses(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	teacher, _ := srv.createUser(t, "Teacher", models.RoleInstructor)
	student, _ := srv.createUser(t, "Student", models.RoleStudent)
	course := &models.Course{Title: "Go in Practice", Category: "Programming", Price: 1999, CreatorID: teacher.ID}
	require.NoError(t, srv.repo.Course().Create(ctx, nil, course))
	pending := &models.Purchase{
		UserID:    student.ID,
		CourseID:  course.ID,
		Amount:    1999,
		Currency:  "inr",
		Status:    models.PurchasePending,
		PaymentID: "cs_handler_1",
	}
	require.NoError(t, srv.repo.Purchase().Create(ctx, nil, pending))

	t.Run("bad signature", func(t *testing.T) {
		w := postWebhook(srv, checkoutCompletedPayload("cs_handler_1"), "t=1,v1=deadbeef")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		stored, err := srv.repo.Purchase().GetByPaymentID(ctx, nil, "cs_handler_1")
		require.NoError(t, err)
		assert.Equal(t, models.PurchasePending, stored.Status)
	})

	t.Run("unknown session", func(t *testing.T) {
		payload := checkoutCompletedPayload("cs_unknown")
		w := postWebhook(srv, payload, signWebhook(payload))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unhandled event type", func(t *testing.T) {
		payload := []byte(`{"id": "evt_other", "object": "event", "type": "payment_intent.created",
			"data": {"object": {"id": "pi_1", "object": "payment_intent"}}}`)
		w := postWebhook(srv, payload, signWebhook(payload))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "not handled")
	})

	t.Run("completed twice", func(t *testing.T) {
		payload := checkoutCompletedPayload("cs_handler_1")
		for i := 0; i < 2; i++ {
			w := postWebhook(srv, payload, signWebhook(payload))
			require.Equal(t, http.StatusOK, w.Code)
		}

		stored, err := srv.repo.Purchase().GetByPaymentID(ctx, nil, "cs_handler_1")
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseCompleted, stored.Status)
		assert.Equal(t, 2500.0, stored.Amount)

		enrolled, err := srv.repo.Enrollment().IsEnrolled(ctx, nil, student.ID, course.ID)
		require.NoError(t, err)
		assert.True(t, enrolled)
	})
}

func TestPurchase_ExportPermissions(t *testing.T) {
	srv := newTestServer(t)
	_, admin := srv.createUser(t, "Admin", models.RoleAdmin)
	_, student := srv.createUser(t, "Student", models.RoleStudent)

	w := srv.do(t, http.MethodGet, "/api/v1/purchase/export", nil, student)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/purchase/export", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestProgress_UnknownCourse(t *testing.T) {
	srv := newTestServer(t)
	_, student := srv.createUser(t, "Student", models.RoleStudent)

	w := srv.do(t, http.MethodGet, "/api/v1/progress/missing", nil, student)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Code)

	w = srv.do(t, http.MethodPost, "/api/v1/progress/missing/complete", nil, student)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourse_UpdateRejectsInvalidPrice(t *testing.T) {
	srv := newTestServer(t)
	_, teacher := srv.createUser(t, "Teacher", models.RoleInstructor)

	w := srv.do(t, http.MethodPost, "/api/v1/courses", map[string]string{
		"courseTitle": "Go in Practice",
		"category":    "Programming",
	}, teacher)
	require.Equal(t, http.StatusCreated, w.Code)
	var course models.Course
	decodeData(t, w, &course)

	for _, price := range []string{"Inf", "-Inf", "NaN", "1e300", "-5", "abc"} {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		require.NoError(t, form.WriteField("coursePrice", price))
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPut, "/api/v1/courses/"+course.ID, &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		req.AddCookie(teacher)
		w = httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, price)
	}

	w = srv.do(t, http.MethodGet, "/api/v1/courses/"+course.ID, nil, teacher)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &course)
	assert.Zero(t, course.Price)
}

func TestProgress_ResponseUsesSnakeCaseKeys(t *testing.T) {
	srv := newTestServer(t)
	_, teacher := srv.createUser(t, "Teacher", models.RoleInstructor)

	w := srv.do(t, http.MethodPost, "/api/v1/courses", map[string]string{
		"courseTitle": "Go in Practice",
		"category":    "Programming",
	}, teacher)
	require.Equal(t, http.StatusCreated, w.Code)
	var course models.Course
	decodeData(t, w, &course)

	w = srv.do(t, http.MethodPost, "/api/v1/courses/"+course.ID+"/lectures", map[string]string{
		"lectureTitle": "Intro",
	}, teacher)
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/progress/"+course.ID, nil, teacher)
	require.Equal(t, http.StatusOK, w.Code)

	var progress struct {
		CourseDetails map[string]interface{}   `json:"course_details"`
		Lectures      []map[string]interface{} `json:"lectures"`
	}
	decodeData(t, w, &progress)
	assert.Equal(t, course.ID, progress.CourseDetails["id"])
	require.Len(t, progress.Lectures, 1)
	assert.Contains(t, progress.Lectures[0], "video_media_id")
	assert.NotContains(t, progress.Lectures[0], "public_id")
}
