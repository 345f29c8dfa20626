package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"cups", "cup"},
		{"Cups", "cup"},
		{"Tablespoons", "tbsp"},
		{"T", "tbsp"},
		{"t", "tsp"},
		{"tsp", "tsp"},
		{"fl  oz", "fl oz"},
		{"Fluid Ounces", "fl oz"},
		{"lbs", "lb"},
		{"pkg", "package"},
		{"handful", "handful"},
		{"HANDFUL", "handful"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeUnit(tt.raw))
		})
	}
}

func TestNormalizeUnitIdempotent(t *testing.T) {
	inputs := []string{"T", "t", "Cups", "tablespoon", "Fl Oz", "xyz", "G", "l", "Cloves", ""}
	for _, in := range inputs {
		once := NormalizeUnit(in)
		assert.Equal(t, once, NormalizeUnit(once), "input %q", in)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Flour", CategoryPantry},
		{"red bell pepper", CategoryProduce},
		// produce 只收 "bell pepper"，單獨的 pepper 交給 spices；
		// 舊版關鍵字表的 "pepper" 會把 black pepper 歸到 produce
		{"black pepper", CategorySpices},
		{"ground pepper", CategorySpices},
		{"fresh strawberries", CategoryProduce},
		{"blueberry", CategoryProduce},
		{"eggplant", CategoryProduce},
		{"salmon fillet", CategorySeafood},
		{"cheddar", CategoryDairy},
		{"yeast", CategoryBaking},
		// soda 屬於飲料，排在 baking 之前
		{"baking soda", CategoryBeverages},
		{"coffee", CategoryBeverages},
		// 第一個命中的分類勝出，chicken 在 broth 之前
		{"chicken broth", CategoryMeat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.name))
		})
	}
}

func TestCategorizeDefaultIsPantry(t *testing.T) {
	// 預設分類是 pantry，other 永遠不會作為預設值出現
	assert.Equal(t, CategoryPantry, Categorize("zzz"))
	assert.Equal(t, CategoryPantry, Categorize(""))
	assert.NotEqual(t, CategoryOther, Categorize("zzz"))
	assert.True(t, IsCategory(CategoryOther))
}

func TestMatchQuantity(t *testing.T) {
	tests := []struct {
		text     string
		quantity *float64
		unit     *string
		span     string
	}{
		{"2 cups flour", ptr(2.0), ptr("cups"), "2 cups"},
		{"1 1/2 tsp salt", ptr(1.5), ptr("tsp"), "1 1/2 tsp"},
		{"½ cup sugar", ptr(0.5), ptr("cup"), "½ cup"},
		{"1½ cups milk", ptr(1.5), ptr("cups"), "1½ cups"},
		{"2-3 cloves garlic", ptr(2.5), ptr("cloves"), "2-3 cloves"},
		{".5 cup cream", ptr(0.5), ptr("cup"), ".5 cup"},
		{"1.5 lbs beef", ptr(1.5), ptr("lbs"), "1.5 lbs"},
		{"one onion", ptr(1.0), nil, "one"},
		{"a pinch of salt", ptr(1.0), ptr("pinch"), "a pinch"},
		{"Two cups stock", ptr(2.0), ptr("cups"), "Two cups"},
		{"pinch of salt", nil, ptr("pinch"), "pinch"},
		{"3/0 cups water", nil, ptr("cups"), "3/0 cups"},
		{"salt to taste", nil, nil, ""},
		{"", nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := MatchQuantity(tt.text)
			if tt.quantity == nil {
				assert.Nil(t, got.Quantity)
			} else {
				require.NotNil(t, got.Quantity)
				assert.InDelta(t, *tt.quantity, *got.Quantity, 1e-9)
			}
			assert.Equal(t, tt.unit, got.Unit)
			assert.Equal(t, tt.span, got.Span)
		})
	}
}

func TestMatchQuantityPrefersHigherScore(t *testing.T) {
	got := MatchQuantity("1 onion and 2 cups stock")
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 2.0, *got.Quantity)
	assert.Equal(t, "2 cups", got.Span)
}

func TestMatchQuantityTieGoesLeft(t *testing.T) {
	got := MatchQuantity("2 cups flour and 3 tbsp sugar")
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 2.0, *got.Quantity)
	assert.Equal(t, ptr("cups"), got.Unit)
}

func TestMatchQuantitySpanFeedsCleanName(t *testing.T) {
	for _, text := range []string{"a pinch of salt", "one onion", "half cup sugar", "2 cups flour"} {
		t.Run(text, func(t *testing.T) {
			m := MatchQuantity(text)
			require.NotEmpty(t, m.Span)
			assert.Contains(t, text, m.Span)
			assert.Equal(t, Parse(text).Name, ptr(CleanName(text, m.Span)))
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		text string
		span string
		want string
	}{
		{"2 cups flour, sifted", "2 cups", "flour"},
		{"flour (2 cups)", "", "flour"},
		{"1 cup of milk", "1 cup", "milk"},
		{"2 large eggs", "2", "eggs"},
		{"thinly sliced onion", "", "onion"},
		{"salt to taste", "", "salt"},
		{"1 cup walnuts (optional)", "1 cup", "walnuts"},
		{"2 cups flour (sifted)", "2 cups", "flour"},
		{"1 can tomatoes [drained]", "1 can", "tomatoes"},
		{"tomatoes (canned)", "", "tomatoes (canned)"},
		{"chopped", "", "chopped"},
		{"2", "2", "2"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.text, tt.span))
		})
	}
}

func TestParseScenarios(t *testing.T) {
	t.Run("cups flour", func(t *testing.T) {
		got := Parse("2 cups flour")
		assert.Equal(t, ptr(2.0), got.Quantity)
		assert.Equal(t, ptr("cup"), got.Unit)
		assert.Equal(t, ptr("flour"), got.Name)
		assert.Equal(t, CategoryPantry, got.Category)
	})

	t.Run("mixed number", func(t *testing.T) {
		got := Parse("1 1/2 tsp salt")
		assert.Equal(t, ptr(1.5), got.Quantity)
		assert.Equal(t, ptr("tsp"), got.Unit)
		assert.Equal(t, ptr("salt"), got.Name)
		assert.Equal(t, CategorySpices, got.Category)
	})

	t.Run("leading modifiers", func(t *testing.T) {
		got := Parse("3 boneless skinless chicken breasts")
		require.NotNil(t, got.Name)
		assert.Contains(t, *got.Name, "chicken")
		assert.NotContains(t, *got.Name, "boneless")
		assert.NotContains(t, *got.Name, "skinless")
		assert.Equal(t, CategoryMeat, got.Category)
	})

	t.Run("no quantity", func(t *testing.T) {
		got := Parse("salt to taste")
		assert.Nil(t, got.Quantity)
		assert.Nil(t, got.Unit)
		assert.Equal(t, ptr("salt"), got.Name)
		assert.Equal(t, CategorySpices, got.Category)
	})

	t.Run("number word", func(t *testing.T) {
		got := Parse("a pinch of salt")
		assert.Equal(t, ptr(1.0), got.Quantity)
		assert.Equal(t, ptr("pinch"), got.Unit)
		assert.Equal(t, ptr("salt"), got.Name)
	})

	t.Run("case sensitive abbreviations", func(t *testing.T) {
		assert.Equal(t, ptr("tbsp"), Parse("2 T butter").Unit)
		assert.Equal(t, ptr("tsp"), Parse("2 t salt").Unit)
	})

	t.Run("can size annotation", func(t *testing.T) {
		got := Parse("1 (14 oz) can diced tomatoes")
		assert.Equal(t, ptr(14.0), got.Quantity)
		assert.Equal(t, ptr("oz"), got.Unit)
		assert.Equal(t, ptr("tomatoes"), got.Name)
		assert.Equal(t, CategoryProduce, got.Category)
	})

	t.Run("fraction slash", func(t *testing.T) {
		got := Parse("1⁄2 cup milk")
		assert.Equal(t, ptr(0.5), got.Quantity)
		assert.Equal(t, ptr("milk"), got.Name)
	})

	t.Run("empty", func(t *testing.T) {
		got := Parse("")
		assert.Nil(t, got.Quantity)
		assert.Nil(t, got.Unit)
		assert.Nil(t, got.Name)
		assert.Equal(t, DefaultCategory, got.Category)
	})
}

func TestParseAlwaysCategorized(t *testing.T) {
	inputs := []string{"", "   ", "!!!", "12", "½", "(optional)", "1/0", "a an the", "2 cups"}
	for _, in := range inputs {
		got := Parse(in)
		assert.True(t, IsCategory(got.Category), "input %q category %q", in, got.Category)
	}
}

func TestParseDeterministic(t *testing.T) {
	a := Parse("1 1/2 cups all-purpose flour, sifted")
	b := Parse("1 1/2 cups all-purpose flour, sifted")
	assert.Equal(t, a, b)
}

func TestParseList(t *testing.T) {
	got := ParseList([]string{"2 cups flour", "salt to taste"})
	require.Len(t, got, 2)
	assert.Equal(t, ptr("flour"), got[0].Name)
	assert.Equal(t, ptr("salt"), got[1].Name)
}

func TestLoadTablesDropsEmptyKeywords(t *testing.T) {
	data := []byte(`
units:
  - canonical: cup
    spellings: [cup]
categories:
  - name: produce
    keywords: ["", "  ", onion]
fractions:
  "½": 0.5
descriptors: [chopped]
`)
	set, err := loadTables(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"onion"}, set.categories[0].Keywords)
}

func TestLoadTablesRejectsInvalid(t *testing.T) {
	_, err := loadTables([]byte("units: ["))
	assert.Error(t, err)

	_, err = loadTables([]byte("units: []\ncategories: []\n"))
	assert.Error(t, err)
}

func ptr[T any](v T) *T {
	return &v
}
