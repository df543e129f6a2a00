package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	phc, err := Hash(Fast, "admin123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(phc, "$argon2id$v=19$m=8192,t=1,p=1$"))

	require.True(t, Verify("admin123", phc))
	require.False(t, Verify("admin124", phc))
}

func TestHash_SaltDiffers(t *testing.T) {
	a, err := Hash(Fast, "same")
	require.NoError(t, err)
	b, err := Hash(Fast, "same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHash_Empty(t *testing.T) {
	_, err := Hash(Fast, "")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestVerify_Malformed(t *testing.T) {
	for _, phc := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$ZGs",
	} {
		require.False(t, Verify("x", phc), phc)
	}
}
