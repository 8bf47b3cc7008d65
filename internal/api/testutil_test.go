package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"restaurant_system/internal/domain"
	"restaurant_system/internal/middleware"
	"restaurant_system/internal/storage"
	"restaurant_system/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// h is shorthand for JSON request bodies
type h = map[string]any

// newTestDB opens a fresh in-memory store with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Dish{}, &domain.Ingredient{},
		&domain.Cart{}, &domain.CartItem{},
		&domain.Order{}, &domain.OrderItem{},
	))
	return db
}

// newTestStorage returns a disk provider rooted in a per-test temp dir
func newTestStorage(t *testing.T) *storage.DiskStorage {
	t.Helper()
	store, err := storage.NewDiskStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

// newTestRouter wires the same routes as the server's composition root.
// The Redis client is nil: the cache helpers treat that as a permanent miss.
func newTestRouter(t *testing.T, db *gorm.DB, store *storage.DiskStorage) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := middleware.JWTAuthMiddleware(testSecret)

	r.POST("/users", RegisterHandler(db))
	r.POST("/sessions", LoginHandler(db, testSecret))
	r.PUT("/users/:id", auth, UpdateUserHandler(db))

	r.POST("/dishes", auth, CreateDishHandler(db, store, nil))
	r.GET("/dishes", auth, SearchDishesHandler(db, nil))
	r.GET("/dishes/:id", auth, GetDishHandler(db, nil))
	r.PUT("/dishes/:id", auth, UpdateDishHandler(db, store, nil))
	r.DELETE("/dishes/:id", auth, DeleteDishHandler(db, store, nil))

	r.POST("/carts", auth, CreateCartHandler(db))
	r.GET("/carts", auth, ListUserCartsHandler(db))
	r.GET("/carts/:id", auth, GetCartHandler(db))
	r.PUT("/carts/:id", auth, UpdateCartHandler(db))
	r.DELETE("/carts/:id", auth, DeleteCartHandler(db))

	r.POST("/orders", auth, CreateOrderHandler(db))
	r.GET("/orders", auth, ListOrdersHandler(db))
	r.GET("/orders/:id", auth, GetOrderHandler(db))
	r.PUT("/orders/:id", auth, UpdateOrderHandler(db))
	r.DELETE("/orders/:id", auth, DeleteOrderHandler(db))
	r.PATCH("/orders/:id/status", auth, middleware.AdminOnlyMiddleware(db), UpdateOrderStatusHandler(db))
	return r
}

// seedUser inserts a user with the password "secret123" and mints a token
func seedUser(t *testing.T, db *gorm.DB, name, email string, admin bool) (domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcryptCost)
	require.NoError(t, err)
	u := domain.User{Name: name, Email: email, Password: string(hash), IsAdmin: admin}
	require.NoError(t, db.Create(&u).Error)
	token, err := utils.GenerateJWT(u.ID, testSecret)
	require.NoError(t, err)
	return u, token
}

// doJSON performs a JSON request against the router
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doForm performs a multipart request against the router
func doForm(t *testing.T, r *gin.Engine, method, path, token string, fields map[string]string, imageName string) *httptest.ResponseRecorder {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response into dest
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
