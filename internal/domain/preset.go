package domain

// Preset is a reusable question template. Every new meeting receives a
// copy of the global list and may grow its own independently.
type Preset struct {
	Name     string   `json:"name"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:     "⭕ 是非題",
			Question: "您是否同意此提案？",
			Options:  []string{"⭕ 同意", "❌ 不同意"},
		},
		{
			Name:     "📊 評分題",
			Question: "請對本次活動進行評分",
			Options:  []string{"⭐️⭐️⭐️⭐️⭐️ 非常滿意", "⭐️⭐️⭐️⭐️ 滿意", "⭐️⭐️⭐️ 普通", "⭐️⭐️ 尚可", "⭐️ 待加強"},
		},
		{
			Name:     "🍱 午餐題",
			Question: "今天午餐想吃什麼類別？",
			Options:  []string{"🍱 便當/自助餐", "🍜 麵食/水餃", "🍔 速食", "🥗 輕食/沙拉"},
		},
	}
}
