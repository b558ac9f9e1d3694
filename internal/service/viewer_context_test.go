package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sweet-sh/sweet-api/internal/model"
)

func TestFlagPropagationThroughTrust(t *testing.T) {
	relationshipRepo := new(MockRelationshipRepository)
	audienceRepo := new(MockAudienceRepository)

	relationshipRepo.On("FindTargets", 1, model.RelationshipFollow).Return(nil, nil)
	relationshipRepo.On("FindTargets", 1, model.RelationshipMute).Return(nil, nil)
	relationshipRepo.On("FindTargets", 1, model.RelationshipFlag).Return([]int{5}, nil)
	relationshipRepo.On("FindTargets", 1, model.RelationshipTrust).Return([]int{4}, nil)
	// 查看者信任的用户4旗标了3，也旗标了查看者自己
	relationshipRepo.On("FindTargetsOfSources", []int{4}, model.RelationshipFlag).Return([]int{3, 1}, nil)
	relationshipRepo.On("FindSources", 1, model.RelationshipTrust).Return(nil, nil)
	audienceRepo.On("FindIDsContainingUser", 1).Return(nil, nil)

	vc, err := loadViewerContext(&model.User{ID: 1}, relationshipRepo, audienceRepo)
	assert.NoError(t, err)

	// 直接旗标和经信任传播的旗标都生效
	assert.True(t, vc.flaggedIDs[5])
	assert.True(t, vc.flaggedIDs[3])
	// 查看者自己永远不会被旗标
	assert.False(t, vc.flaggedIDs[1])
}
