package roster

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name      string
		entries   []Entry
		threshold int
		wantErr   error
	}{
		{name: "empty", entries: nil, threshold: 0, wantErr: ErrEmptyRoster},
		{name: "id out of range", entries: []Entry{{ID: 1}, {ID: 3}}, threshold: 1, wantErr: ErrInvalidID},
		{name: "duplicate id", entries: []Entry{{ID: 1}, {ID: 1}}, threshold: 1, wantErr: ErrDuplicateID},
		{name: "threshold too big", entries: []Entry{{ID: 1}, {ID: 2}}, threshold: 3, wantErr: ErrInvalidThreshold},
		{name: "unordered ok", entries: []Entry{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}}, threshold: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.entries, tc.threshold)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tc.wantErr), "want %v, got %v", tc.wantErr, err)
		})
	}
}

func TestSequential_PartitionsByThreshold(t *testing.T) {
	r, err := Sequential(40, 20)
	require.NoError(t, err)

	a := r.Members(GroupA)
	b := r.Members(GroupB)
	require.Len(t, a, 20)
	require.Len(t, b, 20)
	assert.Equal(t, 1, a[0])
	assert.Equal(t, 20, a[19])
	assert.Equal(t, 21, b[0])
	assert.Equal(t, 40, b[19])

	assert.Equal(t, GroupA, r.GroupOf(20))
	assert.Equal(t, GroupB, r.GroupOf(21))
}

func TestLabel_FallsBackForUnknownID(t *testing.T) {
	r, err := Sequential(4, 2)
	require.NoError(t, err)

	assert.Equal(t, "Member 3", r.Label(3))
	assert.Equal(t, "#99", r.Label(99))

	_, ok := r.Name(99)
	assert.False(t, ok)
}

func TestLoadFile_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
threshold: 1
members:
  - {id: 1, name: Aiko}
  - {id: 2, name: Ben}
  - {id: 3, name: Chen}
`), 0o600))

	r, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, r.Members(GroupA))
	assert.Equal(t, []int{2, 3}, r.Members(GroupB))
	assert.Equal(t, "Chen", r.Label(3))

	jsonPath := filepath.Join(dir, "roster.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"members":[{"id":1,"name":"x"},{"id":2,"name":"y"}]}`), 0o600))

	r, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Threshold())
}
