package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/questboard/internal/model"
)

func TestRewardForCategory(t *testing.T) {
	assert.Equal(t, model.Reward{Experience: 15, Coins: 5}, RewardForCategory(model.CategoryDaily))
	assert.Equal(t, model.Reward{Experience: 50, Coins: 20}, RewardForCategory(model.CategoryWeekly))
	assert.Equal(t, model.Reward{Experience: 25, Coins: 10}, RewardForCategory(model.CategoryOneTime))
	assert.Equal(t, model.Reward{Experience: 100, Coins: 40}, RewardForCategory(model.CategoryMonthly))
}

func TestRewardForCategory_UnknownFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultReward, RewardForCategory(model.Category("Daily")))
	assert.Equal(t, DefaultReward, RewardForCategory(""))
}
