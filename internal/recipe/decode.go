package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMalformed marks payloads that are not a JSON array of objects.
var ErrMalformed = errors.New("malformed payload")

// ShapeError reports a parsed payload that breaks the response schema,
// e.g. a required field the model left out.
type ShapeError struct {
	Problems []string
}

func (e *ShapeError) Error() string {
	return "response does not match schema: " + strings.Join(e.Problems, "; ")
}

// recipeShape mirrors RecipeSchema with pointer fields so that "required"
// means present: an empty string or a false isVeg still passes.
type recipeShape struct {
	Name        *string  `json:"name" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	CookingTime *string  `json:"cookingTime" validate:"required"`
	Difficulty  *string  `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Calories    *float64 `json:"calories"`
	Ingredients []string `json:"ingredients" validate:"required,min=1"`
	Steps       []string `json:"steps" validate:"required,min=1"`
	IsVeg       *bool    `json:"isVeg" validate:"required"`
	Cuisine     *string  `json:"cuisine" validate:"required"`
}

type dayShape struct {
	Day           *string      `json:"day" validate:"required"`
	PlanetaryNote *string      `json:"planetaryNote" validate:"required"`
	Breakfast     *recipeShape `json:"breakfast" validate:"required"`
	Lunch         *recipeShape `json:"lunch" validate:"required"`
	Dinner        *recipeShape `json:"dinner" validate:"required"`
}

type recipeList struct {
	Items []recipeShape `json:"items" validate:"dive"`
}

type planList struct {
	Items []dayShape `json:"items" validate:"dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeRecipes parses and shape-checks a model response holding an array of
// recipes. On any error the returned slice is empty and non-nil.
func DecodeRecipes(data []byte) ([]Recipe, error) {
	var shapes recipeList
	if err := decodeArray(data, &shapes.Items); err != nil {
		return []Recipe{}, err
	}
	if err := checkShape(shapes); err != nil {
		return []Recipe{}, err
	}

	recipes := []Recipe{}
	if err := json.Unmarshal(data, &recipes); err != nil {
		return []Recipe{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return recipes, nil
}

// DecodeWeeklyPlan parses and shape-checks a model response holding an array
// of plan days. Day order and count are kept exactly as received.
func DecodeWeeklyPlan(data []byte) ([]WeeklyPlanDay, error) {
	var shapes planList
	if err := decodeArray(data, &shapes.Items); err != nil {
		return []WeeklyPlanDay{}, err
	}
	if err := checkShape(shapes); err != nil {
		return []WeeklyPlanDay{}, err
	}

	days := []WeeklyPlanDay{}
	if err := json.Unmarshal(data, &days); err != nil {
		return []WeeklyPlanDay{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return days, nil
}

func decodeArray(data []byte, dst any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("%w: expected a JSON array", ErrMalformed)
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func checkShape(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ShapeError{Problems: []string{err.Error()}}
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		// Drop the wrapper type name.
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		problem := ns + ": " + fe.Tag()
		if fe.Param() != "" {
			problem += "=" + fe.Param()
		}
		problems = append(problems, problem)
	}
	return &ShapeError{Problems: problems}
}
