package catalog

// Default 回傳內建的食材清單
func Default() *Catalog {
	items := make(map[Category][]Item, len(defaultItems))
	for cat, list := range defaultItems {
		items[cat] = append([]Item(nil), list...)
	}
	return &Catalog{items: items}
}

var defaultItems = map[Category][]Item{
	Meat: {
		{"ground beef", "🍔"},
		{"chicken", "🍗"},
		{"pork", "🥓"},
		{"lamb", "🐑"},
		{"pichana", "🥩"},
		{"churrasco", "🍖"},
		{"ribeye steaks", "🍽️"},
		{"rabbit", "🐰"},
		{"quail", "🐦"},
		{"pork ribs", "🍖"},
		{"beef ribs", "🍖"},
		{"crow", "🐦"},
		{"goat", "🐐"},
		{"sausage", "🌭"},
		{"gator", "🐊"},
		{"iguana", "🦎"},
		{"turkey", "🦃"},
	},
	Vegetable: {
		{"cauliflower", "🥦"},
		{"carrot", "🥕"},
		{"broccoli", "🥦"},
		{"onion", "🧅"},
		{"potato", "🥔"},
		{"tomato", "🍅"},
		{"green beans", "🌱"},
		{"okra", "🌿"},
		{"collards", "🥬"},
		{"chef salad", "🥗"},
		{"sugar cane", "🌾"},
		{"shrooms", "🍄"},
		{"swamp cabbage", "🌾"},
		{"palm hearts", "🌴"},
	},
	Fruit: {
		{"apple", "🍎"},
		{"banana", "🍌"},
		{"lemon", "🍋"},
		{"orange", "🍊"},
		{"mango", "🥭"},
		{"avocado", "🥑"},
		{"starfruit", "✨"},
		{"dragon fruit", "🐉"},
		{"carambola", "🌟"},
		{"coconuts", "🥥"},
		{"lychee", "🍒"},
	},
	Seafood: {
		{"salmon", "🐟"},
		{"shrimp", "🦐"},
		{"tuna", "🐡"},
		{"yellowtail snapper", "🎣"},
		{"grouper", "🪸"},
		{"red snapper", "🌊"},
		{"oysters", "🦪"},
		{"lobster", "🦞"},
		{"conch", "🐚"},
		{"lionfish", "🦈"},
		{"catfish", "🐺"},
		{"bass", "🎸"},
		{"crappie", "🐳"},
		{"shark", "🦈"},
		{"speckled trout", "🐠"},
		{"redfish", "🐡"},
	},
	Dairy: {
		{"cheese", "🧀"},
		{"milk", "🥛"},
		{"butter", "🧈"},
		{"yogurt", "🍶"},
		{"eggs", "🥚"},
	},
	Carb: {
		{"bread", "🍞"},
		{"pasta", "🍝"},
		{"rice", "🍚"},
		{"tortilla", "🌮"},
		{"biscuits", "🥐"},
		{"cachapas", "🌽"},
		{"cornbread", "🍞"},
		{"pancakes", "🥞"},
		{"waffles", "🧇"},
	},
	DevilWater: {
		{"beer", "🍺"},
		{"moonshine", "🥃"},
		{"whiskey", "🥃"},
		{"vodka", "🍸"},
		{"tequila", "🌵"},
		{"rum", "🏴‍☠️"},
		{"scotch", "🥃"},
		{"malt liquor", "🍺"},
	},
}
