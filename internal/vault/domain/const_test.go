package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryValidate(t *testing.T) {
	tests := []struct {
		category Category
		wantErr  bool
	}{
		{category: CategoryEmail},
		{category: CategoryPhone},
		{category: CategoryName},
		{category: Category("ssn"), wantErr: true},
		{category: Category(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := tt.category.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCategoryPriority(t *testing.T) {
	// email > phone > name drives overlap resolution.
	assert.Greater(t, CategoryEmail.Priority(), CategoryPhone.Priority())
	assert.Greater(t, CategoryPhone.Priority(), CategoryName.Priority())
	assert.Equal(t, 0, Category("ssn").Priority())
}

func TestCategoriesOrder(t *testing.T) {
	assert.Equal(t, []Category{CategoryEmail, CategoryPhone, CategoryName}, Categories)
}
