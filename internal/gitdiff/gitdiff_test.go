package gitdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/internal/api/user.go b/internal/api/user.go
index 1111111..2222222 100644
--- a/internal/api/user.go
+++ b/internal/api/user.go
@@ -10,2 +10,3 @@ func getUser() {
-	old line one
-	old line two
+	new line one
+	new line two
+	new line three
@@ -40 +41 @@ func setUser() {
-	removed
+	replaced
diff --git a/internal/api/token.go b/internal/api/token.go
index 3333333..4444444 100644
--- a/internal/api/token.go
+++ b/internal/api/token.go
@@ -5,3 +5,0 @@ func parseToken() {
-	gone one
-	gone two
-	gone three
`

func TestParseDiff(t *testing.T) {
	changes, err := ParseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, changes, 2)

	t.Run("Multiple chunks accumulate new-side lines", func(t *testing.T) {
		assert.Equal(t, "internal/api/user.go", changes[0].Path)
		assert.Equal(t, []int{10, 11, 12, 41}, changes[0].Lines)
	})

	t.Run("Pure deletion still counts the file", func(t *testing.T) {
		assert.Equal(t, "internal/api/token.go", changes[1].Path)
		assert.Empty(t, changes[1].Lines)
	})
}

func TestParseDiff_EmptyOutput(t *testing.T) {
	changes, err := ParseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestPaths(t *testing.T) {
	paths := Paths([]ChangedFile{{Path: "a.go"}, {Path: "b.go"}})
	assert.Equal(t, []string{"a.go", "b.go"}, paths)
	assert.Empty(t, Paths(nil))
}
