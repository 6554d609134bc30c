package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	assert.Len(t, s.ID, 43)
	assert.True(t, s.IsNew())
	assert.False(t, s.Modified())
	assert.True(t, s.IDChanged())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.StaleID())
}

func TestSignIn_RotatesLoadedSession(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	s.MarkSaved()
	original := s.ID

	userID := uuid.New()
	require.NoError(t, s.SignIn(userID))

	assert.NotEqual(t, original, s.ID)
	assert.Equal(t, original, s.StaleID())
	assert.True(t, s.IDChanged())
	assert.True(t, s.Authenticated())
	assert.Equal(t, userID, s.UserID)
}

func TestSignIn_TwiceKeepsFirstStaleID(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	s.MarkSaved()
	original := s.ID

	require.NoError(t, s.SignIn(uuid.New()))
	require.NoError(t, s.SignIn(uuid.New()))

	assert.Equal(t, original, s.StaleID())
}

func TestSignIn_NewSessionHasNoStaleID(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	require.NoError(t, s.SignIn(uuid.New()))
	assert.Empty(t, s.StaleID())
}

func TestSignOut(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	require.NoError(t, s.SignIn(uuid.New()))
	s.SetXSRFToken("tok")
	s.MarkSaved()

	s.SignOut()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.XSRFToken)
	assert.True(t, s.Modified())
}

func TestDestroy(t *testing.T) {
	tests := []struct {
		name      string
		loaded    bool
		wantStale bool
	}{
		{name: "loaded session", loaded: true, wantStale: true},
		{name: "new session", loaded: false, wantStale: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New()
			require.NoError(t, err)
			require.NoError(t, s.SignIn(uuid.New()))
			s.SetXSRFToken("tok")
			if tc.loaded {
				s.MarkSaved()
			}
			original := s.ID

			require.NoError(t, s.Destroy())

			assert.NotEqual(t, original, s.ID)
			assert.False(t, s.Authenticated())
			assert.Empty(t, s.XSRFToken)
			assert.True(t, s.Modified())
			assert.True(t, s.IDChanged())
			if tc.wantStale {
				assert.Equal(t, original, s.StaleID())
			} else {
				assert.Empty(t, s.StaleID())
			}
		})
	}
}

func TestMarkSaved(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	s.MarkSaved()

	assert.False(t, s.IsNew())
	assert.False(t, s.Modified())
	assert.False(t, s.IDChanged())

	s.SetXSRFToken("abc")
	assert.True(t, s.Modified())
	assert.False(t, s.IDChanged())
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s, err := New()
	require.NoError(t, err)
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
