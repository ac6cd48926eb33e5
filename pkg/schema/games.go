package schema

func num(v float64) *float64 { return &v }

// Games returns the field schema of the game form. Each call returns a fresh
// copy, so callers may modify it.
func Games() Schema {
	return Schema{
		{
			Name:        "name",
			Type:        TypeText,
			Label:       "Nazwa gry",
			Placeholder: "Wprowadź nazwę",
			Rules:       Rules{Required: true, MinLength: 2},
		},
		{
			Name:  "genre",
			Type:  TypeSelect,
			Label: "Gatunek",
			Options: []Option{
				{"Akcja", "Action"},
				{"Akcja przygodowa", "Action-Adventure"},
				{"Bijatyka", "Fighting"},
				{"FPS", "FPS"},
				{"Horror", "Horror"},
				{"Indie", "Indie"},
				{"MMO", "MMO"},
				{"MOBA", "MOBA"},
				{"Platformówka", "Platformer"},
				{"Przygodowa", "Adventure"},
				{"Przygodowa point-and-click", "Point-and-Click"},
				{"Puzzle", "Puzzle"},
				{"Racing", "Racing"},
				{"Roguelike", "Roguelike"},
				{"RPG", "RPG"},
				{"RPG akcji", "Action-RPG"},
				{"RTS", "RTS"},
				{"Sandbox", "Sandbox"},
				{"Simulator", "Simulator"},
				{"Sportowa", "Sports"},
				{"Stealth", "Stealth"},
				{"Strategia", "Strategy"},
				{"Strategia turowa", "Turn-Based Strategy"},
				{"Survival", "Survival"},
				{"Symulacja życia", "Life Simulation"},
				{"Tower Defense", "Tower Defense"},
				{"TPS", "TPS"},
				{"Wyścigowa", "Racing"},
				{"Zręcznościowa", "Arcade"},
				{"Inny", "Other"},
			},
			Rules: Rules{Required: true},
		},
		{
			Name:  "platform",
			Type:  TypeSelect,
			Label: "Platforma",
			Options: []Option{
				{"PC", "PC"},
				{"Mac", "Mac"},
				{"Nintendo Switch", "Nintendo Switch"},
				{"Nintendo Switch 2", "Nintendo Switch 2"},
			},
			Rules: Rules{Required: true},
		},
		{
			Name:        "coverImage",
			Type:        TypeImage,
			Label:       "Okładka",
			Placeholder: "Wklej URL obrazka lub Base64",
		},
		{
			Name:  "version",
			Type:  TypeSelect,
			Label: "Wersja",
			Options: []Option{
				{"Pudełko płyta", "box_disc"},
				{"Pudełko kartridź", "box_cartridge"},
				{"Pudełko - kod", "box_code"},
				{"Cyfrowa", "digital"},
			},
		},
		{
			Name:        "digitalStore",
			Type:        TypeSelect,
			Label:       "Sklep cyfrowy",
			Placeholder: "Wybierz sklep",
			Options: []Option{
				{"Steam", "steam"},
				{"Epic Games Store", "epic"},
				{"Nintendo Store", "nintendo"},
				{"PlayStation Store", "playstation"},
				{"Xbox Store", "xbox"},
				{"GOG", "gog"},
				{"Origin", "origin"},
				{"Ubisoft Connect", "ubisoft"},
				{"Battle.net", "battlenet"},
				{"Inny", "other"},
			},
			ShowWhen: &ShowWhen{Field: "version", Value: "digital"},
		},
		{
			Name:  "purchaseDate",
			Type:  TypeDate,
			Label: "Data zakupu",
		},
		{
			Name:        "purchasePrice",
			Type:        TypeNumber,
			Label:       "Cena zakupu",
			Placeholder: "0.00",
			Rules:       Rules{Min: num(0)},
		},
		{
			Name:  "description",
			Type:  TypeTextarea,
			Label: "Opis",
		},
		{
			Name:  "status",
			Type:  TypeSelect,
			Label: "Status",
			Options: []Option{
				{"Lista życzeń", "wishlist"},
				{"Zamówiony Preorder", "preordered"},
				{"Gotowa do grania", "ready_to_play"},
				{"W trakcie", "in_progress"},
				{"Ukończona", "completed"},
				{"Wstrzymana", "on_hold"},
				{"Nie ukończona", "not_completed"},
			},
		},
		{
			Name:  "completionDate",
			Type:  TypeDate,
			Label: "Data ukończenia",
		},
		{
			Name:        "comment",
			Type:        TypeTextarea,
			Label:       "Komentarz",
			Placeholder: "Dodaj komentarz do gry...",
		},
		{
			Name:        "tags",
			Type:        TypeTags,
			Label:       "Tagi",
			Placeholder: "Wpisz tag i naciśnij Enter, Tab lub przecinek",
		},
		{
			Name:  "rating",
			Type:  TypeRating,
			Label: "Ocena",
			Rules: Rules{Min: num(0), Max: num(10)},
		},
		{
			Name:  "isBorrowed",
			Type:  TypeCheckbox,
			Label: "Czy pożyczona",
		},
		{
			Name:     "borrowDate",
			Type:     TypeDate,
			Label:    "Data pożyczenia",
			ShowWhen: &ShowWhen{Field: "isBorrowed", Value: true},
		},
		{
			Name:        "borrowedTo",
			Type:        TypeText,
			Label:       "Komu pożyczone",
			Placeholder: "Wprowadź imię lub nazwę",
			ShowWhen:    &ShowWhen{Field: "isBorrowed", Value: true},
		},
	}
}
