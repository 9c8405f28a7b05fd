package backend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"localmart/internal/marketerrors"
)

func TestQueryValidate(t *testing.T) {
	t.Parallel()

	manyIDs := make([]string, InLimit+1)
	for i := range manyIDs {
		manyIDs[i] = "id"
	}

	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{
			name:  "Minimal_Valid",
			query: Query{Collection: "items"},
		},
		{
			name: "Full_Valid",
			query: Query{
				Collection: "items",
				Filters:    []Filter{{Field: "category", Op: OpEqual, Value: "Books"}},
				Sort:       Sort{Field: "createdAt", Desc: true},
				Limit:      20,
				StartAfter: "doc9",
				IDs:        []string{"a", "b"},
			},
		},
		{
			name:    "Missing_Collection",
			query:   Query{},
			wantErr: true,
		},
		{
			name: "Empty_Filter_Field",
			query: Query{
				Collection: "items",
				Filters:    []Filter{{Field: "", Op: OpEqual, Value: "x"}},
			},
			wantErr: true,
		},
		{
			name: "Unsupported_Operator",
			query: Query{
				Collection: "items",
				Filters:    []Filter{{Field: "price", Op: Op(">="), Value: 10}},
			},
			wantErr: true,
		},
		{
			name: "Too_Many_IDs",
			query: Query{
				Collection: "items",
				IDs:        manyIDs,
			},
			wantErr: true,
		},
		{
			name: "Negative_Limit",
			query: Query{
				Collection: "items",
				Limit:      -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.query.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, marketerrors.ErrInvalidQuery)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDocumentID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "d1", Document{"id": "d1"}.ID())
	require.Empty(t, Document{}.ID())
	require.Empty(t, Document{"id": 42}.ID())
}
