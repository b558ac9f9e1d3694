package util

import (
	"github.com/go-playground/validator/v10"

	"github.com/sweet-sh/sweet-api/internal/model"
)

// ValidateSorting 验证排序偏好取值
func ValidateSorting(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return value == model.SortingFluid || value == model.SortingChronological
}

// ValidateRelationshipType 验证关系类型取值
func ValidateRelationshipType(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch value {
	case model.RelationshipFollow, model.RelationshipTrust,
		model.RelationshipMute, model.RelationshipFlag:
		return true
	}
	return false
}
