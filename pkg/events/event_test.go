package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentRef(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]interface{}
		wantType string
		wantId   int64
		wantErr  bool
	}{
		{"json number", map[string]interface{}{"content_type": "product", "content_id": float64(42)}, "product", 42, false},
		{"string id", map[string]interface{}{"content_type": "page", "content_id": " 7 "}, "page", 7, false},
		{"settings singleton", map[string]interface{}{"content_type": "settings", "content_id": float64(0)}, "settings", 0, false},
		{"missing type", map[string]interface{}{"content_id": float64(1)}, "", 0, true},
		{"missing id", map[string]interface{}{"content_type": "post"}, "", 0, true},
		{"bad id", map[string]interface{}{"content_type": "post", "content_id": "abc"}, "", 0, true},
		{"negative id", map[string]interface{}{"content_type": "post", "content_id": float64(-3)}, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, id, err := ContentRef(NewEvent(ContentDeleted, tt.data))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, contentType)
			assert.Equal(t, tt.wantId, id)
		})
	}
}

func TestTypeFromSubject(t *testing.T) {
	assert.Equal(t, ContentUpdated, TypeFromSubject("events.CONTENT_UPDATED"))
	assert.Equal(t, SettingsChanged, TypeFromSubject(SettingsChanged))
}
