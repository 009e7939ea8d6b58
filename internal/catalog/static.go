package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed menu.json
var menuJSON []byte

// rawMenu follows the layout of the public meal database: flat meal objects
// with numbered strIngredientN/strMeasureN fields.
type rawMenu struct {
	Categories []struct {
		Name        string `json:"strCategory"`
		Thumb       string `json:"strCategoryThumb"`
		Description string `json:"strCategoryDescription"`
	} `json:"categories"`
	Meals []map[string]*string `json:"meals"`
}

// StaticSource serves a catalog decoded from JSON held in memory.
type StaticSource struct {
	categories []Category
	meals      map[string]*MealDetail
	byCategory map[string][]MealSummary
}

// NewStaticSource returns the built-in menu.
func NewStaticSource() (*StaticSource, error) {
	return ParseMenu(menuJSON)
}

// ParseMenu decodes a menu document.
func ParseMenu(data []byte) (*StaticSource, error) {
	var raw rawMenu
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}

	s := &StaticSource{meals: map[string]*MealDetail{}, byCategory: map[string][]MealSummary{}}
	for _, c := range raw.Categories {
		s.categories = append(s.categories, Category{Name: c.Name, ThumbnailURL: c.Thumb, Description: c.Description})
	}

	for _, m := range raw.Meals {
		d := mealFromRaw(m)
		if d.ID == "" {
			return nil, fmt.Errorf("parse menu: meal %q has no id", d.Name)
		}
		s.meals[d.ID] = d
		key := strings.ToLower(d.Category)
		s.byCategory[key] = append(s.byCategory[key], MealSummary{ID: d.ID, Name: d.Name, ThumbnailURL: d.ThumbnailURL})
	}
	for _, list := range s.byCategory {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	return s, nil
}

func mealFromRaw(m map[string]*string) *MealDetail {
	get := func(k string) string {
		if v := m[k]; v != nil {
			return strings.TrimSpace(*v)
		}
		return ""
	}

	d := &MealDetail{
		ID:           get("idMeal"),
		Name:         get("strMeal"),
		Category:     get("strCategory"),
		Area:         get("strArea"),
		Instructions: get("strInstructions"),
		ThumbnailURL: get("strMealThumb"),
	}
	for i := 1; i <= MaxIngredients; i++ {
		name := get(fmt.Sprintf("strIngredient%d", i))
		if name == "" {
			continue
		}
		d.Ingredients = append(d.Ingredients, Ingredient{Name: name, Measure: get(fmt.Sprintf("strMeasure%d", i))})
	}
	return d
}

func (s *StaticSource) FetchCategories(ctx context.Context) ([]Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Category(nil), s.categories...), nil
}

func (s *StaticSource) FetchMealsByCategory(ctx context.Context, category string) ([]MealSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, ok := s.byCategory[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", category, ErrNotFound)
	}
	return append([]MealSummary(nil), list...), nil
}

func (s *StaticSource) FetchMealDetail(ctx context.Context, id string) (*MealDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := s.meals[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("meal %q: %w", id, ErrNotFound)
	}
	cp := *d
	cp.Ingredients = append([]Ingredient(nil), d.Ingredients...)
	return &cp, nil
}
