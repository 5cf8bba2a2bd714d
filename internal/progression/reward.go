package progression

import "github.com/iliyamo/questboard/internal/model"

// rewards is the one canonical category → reward table.
var rewards = map[model.Category]model.Reward{
	model.CategoryDaily:   {Experience: 15, Coins: 5},
	model.CategoryWeekly:  {Experience: 50, Coins: 20},
	model.CategoryOneTime: {Experience: 25, Coins: 10},
	model.CategoryMonthly: {Experience: 100, Coins: 40},
}

// DefaultReward is granted for a category missing from the table.
var DefaultReward = model.Reward{Experience: 5, Coins: 1}

// RewardForCategory looks up the reward for one completion of a quest in c.
func RewardForCategory(c model.Category) model.Reward {
	if r, ok := rewards[c]; ok {
		return r
	}
	return DefaultReward
}
