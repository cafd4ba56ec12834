package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealwise/backend/internal/models"
)

var (
	ErrAllergyNotFound    = errors.New("allergy not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
)

// AllergyService manages the allergy catalog, its ingredient mappings and
// each user's selected allergy set.
type AllergyService struct {
	db *gorm.DB
}

func NewAllergyService(db *gorm.DB) *AllergyService {
	return &AllergyService{db: db}
}

// ListAllergies returns the full catalog ordered by name.
func (s *AllergyService) ListAllergies(ctx context.Context) ([]models.Allergy, error) {
	var allergies []models.Allergy
	if err := s.db.Order("name ASC").Find(&allergies).Error; err != nil {
		return nil, err
	}
	return allergies, nil
}

// CreateAllergy adds a catalog entry. Names are stored lowercase; creating an
// allergy that already exists returns the existing row.
func (s *AllergyService) CreateAllergy(ctx context.Context, name, description string) (*models.Allergy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, errors.New("allergy name is required")
	}

	var existing models.Allergy
	err := s.db.Where("LOWER(name) = ?", name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	allergy := models.Allergy{Name: name, Description: description}
	if err := s.db.Create(&allergy).Error; err != nil {
		return nil, err
	}
	return &allergy, nil
}

// MappedIngredients lists the ingredients mapped to an allergy.
func (s *AllergyService) MappedIngredients(ctx context.Context, allergyID uint) ([]models.Ingredient, error) {
	var allergy models.Allergy
	if err := s.db.First(&allergy, allergyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllergyNotFound
		}
		return nil, err
	}

	var ingredients []models.Ingredient
	if err := s.db.
		Joins("JOIN allergy_ingredient_mappings m ON m.ingredient_id = ingredients.id").
		Where("m.allergy_id = ?", allergyID).
		Order("ingredients.name ASC").
		Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// MapIngredient links one ingredient, identified by id or by exact name, to
// an allergy. Duplicate mappings are ignored.
func (s *AllergyService) MapIngredient(ctx context.Context, allergyID uint, ingredientID uint, ingredientName string) (*models.AllergyIngredientMapping, error) {
	var allergy models.Allergy
	if err := s.db.First(&allergy, allergyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllergyNotFound
		}
		return nil, err
	}

	var ingredient models.Ingredient
	if ingredientID != 0 {
		if err := s.db.First(&ingredient, ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrIngredientNotFound
			}
			return nil, err
		}
	} else {
		name := strings.ToLower(strings.TrimSpace(ingredientName))
		if name == "" {
			return nil, errors.New("ingredient id or name is required")
		}
		if err := s.db.Where("LOWER(name) = ?", name).First(&ingredient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrIngredientNotFound
			}
			return nil, err
		}
	}

	var existing models.AllergyIngredientMapping
	err := s.db.Where("allergy_id = ? AND ingredient_id = ?", allergyID, ingredient.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	mapping := models.AllergyIngredientMapping{AllergyID: allergyID, IngredientID: ingredient.ID}
	if err := s.db.Create(&mapping).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

// AutoMap maps every ingredient whose name contains the allergy name or its
// plural to the allergy, up to limit new mappings. It returns the number of
// mappings created.
func (s *AllergyService) AutoMap(ctx context.Context, allergyID uint, limit int) (int, error) {
	var allergy models.Allergy
	if err := s.db.First(&allergy, allergyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAllergyNotFound
		}
		return 0, err
	}
	if limit <= 0 {
		limit = 100
	}

	name := strings.ToLower(allergy.Name)
	patterns := []string{"%" + name + "%"}
	if !strings.HasSuffix(name, "s") {
		patterns = append(patterns, "%"+name+"s%")
	}

	query := s.db.Model(&models.Ingredient{})
	clause := make([]string, len(patterns))
	args := make([]interface{}, len(patterns))
	for i, p := range patterns {
		clause[i] = "LOWER(name) LIKE ?"
		args[i] = p
	}
	query = query.Where(strings.Join(clause, " OR "), args...)

	var ingredientIDs []uint
	if err := query.Pluck("id", &ingredientIDs).Error; err != nil {
		return 0, err
	}

	created := 0
	for _, id := range ingredientIDs {
		if created >= limit {
			break
		}
		var existing models.AllergyIngredientMapping
		err := s.db.Where("allergy_id = ? AND ingredient_id = ?", allergyID, id).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		mapping := models.AllergyIngredientMapping{AllergyID: allergyID, IngredientID: id}
		if err := s.db.Create(&mapping).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// UnmapIngredient removes an allergy/ingredient link.
func (s *AllergyService) UnmapIngredient(ctx context.Context, allergyID, ingredientID uint) error {
	result := s.db.Where("allergy_id = ? AND ingredient_id = ?", allergyID, ingredientID).
		Delete(&models.AllergyIngredientMapping{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAllergyNotFound
	}
	return nil
}

// UserAllergies returns the allergies the user has selected, ordered by name.
func (s *AllergyService) UserAllergies(ctx context.Context, userID uuid.UUID) ([]models.Allergy, error) {
	var allergies []models.Allergy
	if err := s.db.
		Joins("JOIN user_allergies ua ON ua.allergy_id = allergies.id").
		Where("ua.user_id = ?", userID).
		Order("allergies.name ASC").
		Find(&allergies).Error; err != nil {
		return nil, err
	}
	return allergies, nil
}

// SetUserAllergies replaces the user's allergy set with the given allergy IDs.
func (s *AllergyService) SetUserAllergies(ctx context.Context, userID uuid.UUID, allergyIDs []uint) ([]models.Allergy, error) {
	if len(allergyIDs) > 0 {
		var count int64
		if err := s.db.Model(&models.Allergy{}).Where("id IN ?", allergyIDs).Count(&count).Error; err != nil {
			return nil, err
		}
		if int(count) != len(uniqueIDs(allergyIDs)) {
			return nil, ErrAllergyNotFound
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserAllergy{}).Error; err != nil {
			return fmt.Errorf("error clearing user allergies: %w", err)
		}
		for _, id := range uniqueIDs(allergyIDs) {
			record := models.UserAllergy{UserID: userID, AllergyID: id}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("error adding user allergy: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.UserAllergies(ctx, userID)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
