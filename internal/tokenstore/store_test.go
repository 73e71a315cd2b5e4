package tokenstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brizzai/dishom-client/internal/models"
	"github.com/brizzai/dishom-client/internal/tokenstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Tokens(t *testing.T) {
	tests := []struct {
		name        string
		raw         *string
		wantAccess  string
		wantRefresh string
	}{
		{
			name:        "No record",
			raw:         nil,
			wantAccess:  "",
			wantRefresh: "",
		},
		{
			name:        "Access and refresh",
			raw:         ptr(`{"access":"A","refresh":"B"}`),
			wantAccess:  "A",
			wantRefresh: "B",
		},
		{
			name:        "Legacy token field",
			raw:         ptr(`{"token":"T"}`),
			wantAccess:  "T",
			wantRefresh: "",
		},
		{
			name:        "Malformed record",
			raw:         ptr(`{"access":`),
			wantAccess:  "",
			wantRefresh: "",
		},
		{
			name:        "Not an object",
			raw:         ptr(`"A"`),
			wantAccess:  "",
			wantRefresh: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := tokenstore.NewMemoryStorage()
			if tt.raw != nil {
				require.NoError(t, storage.Set(ctx, tokenstore.TokensKey, *tt.raw))
			}
			store := tokenstore.NewStore(storage)

			access, ok := store.Access(ctx)
			assert.Equal(t, tt.wantAccess, access)
			assert.Equal(t, tt.wantAccess != "", ok)

			refresh, ok := store.Refresh(ctx)
			assert.Equal(t, tt.wantRefresh, refresh)
			assert.Equal(t, tt.wantRefresh != "", ok)
		})
	}
}

func TestStore_Persist(t *testing.T) {
	ctx := context.Background()
	storage := tokenstore.NewMemoryStorage()
	store := tokenstore.NewStore(storage)

	err := store.Persist(ctx, models.TokenPair{Access: "A", Refresh: "B"}, nil)
	require.NoError(t, err)

	raw, err := storage.Get(ctx, tokenstore.TokensKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access":"A","refresh":"B"}`, raw)

	raw, err = storage.Get(ctx, tokenstore.UserKey)
	require.NoError(t, err)
	assert.Equal(t, "null", raw)

	user, err := store.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestStore_MergeAccess(t *testing.T) {
	t.Run("keeps refresh and unknown fields", func(t *testing.T) {
		ctx := context.Background()
		storage := tokenstore.NewMemoryStorage()
		require.NoError(t, storage.Set(ctx, tokenstore.TokensKey, `{"access":"old","refresh":"R","issued_by":"web"}`))
		store := tokenstore.NewStore(storage)

		require.NoError(t, store.MergeAccess(ctx, "new"))

		raw, err := storage.Get(ctx, tokenstore.TokensKey)
		require.NoError(t, err)
		assert.JSONEq(t, `{"access":"new","refresh":"R","issued_by":"web"}`, raw)
	})

	t.Run("starts from empty record", func(t *testing.T) {
		ctx := context.Background()
		store := tokenstore.NewStore(tokenstore.NewMemoryStorage())

		require.NoError(t, store.MergeAccess(ctx, "new"))

		access, ok := store.Access(ctx)
		assert.True(t, ok)
		assert.Equal(t, "new", access)
		_, ok = store.Refresh(ctx)
		assert.False(t, ok)
	})
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	storage := tokenstore.NewMemoryStorage()
	store := tokenstore.NewStore(storage)

	user := models.User{
		"id":        float64(7),
		"full_name": "Asha Kumari",
		"profile":   map[string]any{"district": "Ranchi", "pincode": "834001"},
	}
	require.NoError(t, store.SaveUser(ctx, user))

	loaded, err := store.LoadUser(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(user, loaded); diff != "" {
		t.Errorf("LoadUser() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, storage.Set(ctx, tokenstore.UserKey, "{broken"))
	_, err = store.LoadUser(ctx)
	assert.Error(t, err)

	require.NoError(t, store.DeleteUser(ctx))
	loaded, err = store.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewStore(tokenstore.NewMemoryStorage())
	require.NoError(t, store.Persist(ctx, models.TokenPair{Access: "A", Refresh: "B"}, models.User{"id": "1"}))

	require.NoError(t, store.Clear(ctx))

	_, ok := store.Tokens(ctx)
	assert.False(t, ok)
	user, err := store.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestStore_PersistErrorIsBestEffort(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// A directory where the file should be makes every write fail
	path := filepath.Join(dir, "storage.json")
	require.NoError(t, os.Mkdir(path, 0o700))
	store := tokenstore.NewStore(tokenstore.NewFileStorage(path))

	err := store.Persist(ctx, models.TokenPair{Access: "A"}, nil)
	var persistErr *tokenstore.PersistError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "persist", persistErr.Op)

	_, ok := store.Access(ctx)
	assert.False(t, ok)
}

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")

	first := tokenstore.NewFileStorage(path)
	_, err := first.Get(ctx, tokenstore.TokensKey)
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)

	require.NoError(t, first.Set(ctx, tokenstore.TokensKey, `{"access":"A"}`))
	require.NoError(t, first.Set(ctx, tokenstore.UserKey, `{"id":1}`))

	// A second handle on the same file sees the writes
	second := tokenstore.NewFileStorage(path)
	v, err := second.Get(ctx, tokenstore.TokensKey)
	require.NoError(t, err)
	assert.Equal(t, `{"access":"A"}`, v)

	require.NoError(t, second.Delete(ctx, tokenstore.TokensKey))
	_, err = first.Get(ctx, tokenstore.TokensKey)
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)

	v, err = first.Get(ctx, tokenstore.UserKey)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAccessExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, ok := tokenstore.AccessExpiry(token)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = tokenstore.AccessExpiry("not-a-jwt")
	assert.False(t, ok)
}

func ptr(s string) *string {
	return &s
}
