package fieldmap

import "github.com/iliyamo/poker-club/internal/model"

// Per-entity dictionaries.  Derived columns (ids, timestamps, player totals)
// are not writable and therefore absent.

var Tournaments = New("tournaments",
	Field{Name: "title", Column: "title", Kind: String, Required: true, MaxLen: 255},
	Field{Name: "description", Column: "description", Kind: String},
	Field{Name: "startTime", Column: "start_time", Kind: Time},
	Field{Name: "buyIn", Column: "buy_in", Kind: Int, NonNegative: true},
	Field{Name: "rebuyPrice", Column: "rebuy_price", Kind: Int, NonNegative: true},
	Field{Name: "rebuyChips", Column: "rebuy_chips", Kind: Int, NonNegative: true},
	Field{Name: "addonPrice", Column: "addon_price", Kind: Int, NonNegative: true},
	Field{Name: "addonChips", Column: "addon_chips", Kind: Int, NonNegative: true},
	Field{Name: "startingChips", Column: "starting_chips", Kind: Int, NonNegative: true},
	Field{Name: "guarantee", Column: "guarantee", Kind: Int, NonNegative: true},
	Field{Name: "structure", Column: "structure", Kind: String, MaxLen: 191},
	Field{Name: "status", Column: "status", Kind: String, OneOf: model.TournamentStatuses},
	Field{Name: "visibleFrom", Column: "visible_from", Kind: Time, Nullable: true},
	Field{Name: "visibleUntil", Column: "visible_until", Kind: Time, Nullable: true},
	Field{Name: "featured", Column: "featured", Kind: Bool},
)

var CashGames = New("cash_games",
	Field{Name: "name", Column: "name", Kind: String, Required: true, MaxLen: 255},
	Field{Name: "game", Column: "game", Kind: String, Required: true, MaxLen: 32},
	Field{Name: "stakes", Column: "stakes", Kind: String, Required: true, MaxLen: 64},
	Field{Name: "minBuyIn", Column: "min_buy_in", Kind: Int, NonNegative: true},
	Field{Name: "maxBuyIn", Column: "max_buy_in", Kind: Int, NonNegative: true},
	Field{Name: "schedule", Column: "schedule", Kind: String, MaxLen: 255},
	Field{Name: "scheduledDates", Column: "scheduled_dates", Kind: Dates},
	Field{Name: "description", Column: "description", Kind: String},
	Field{Name: "active", Column: "is_active", Kind: Bool},
	Field{Name: "featured", Column: "featured", Kind: Bool},
)

var Banners = New("banners",
	Field{Name: "title", Column: "title", Kind: String, Required: true, MaxLen: 255},
	Field{Name: "description", Column: "description", Kind: String},
	Field{Name: "imageUrl", Column: "image_url", Kind: String, Required: true, MaxLen: 1024},
	Field{Name: "linkUrl", Column: "link_url", Kind: String, Nullable: true, MaxLen: 1024},
	Field{Name: "visibleFrom", Column: "visible_from", Kind: Time, Nullable: true},
	Field{Name: "visibleUntil", Column: "visible_until", Kind: Time, Nullable: true},
	Field{Name: "displayOrder", Column: "display_order", Kind: Int},
	Field{Name: "active", Column: "is_active", Kind: Bool},
)

var Players = New("players",
	Field{Name: "name", Column: "name", Kind: String, Required: true, MaxLen: 255},
	Field{Name: "nickname", Column: "nickname", Kind: String, MaxLen: 255},
	Field{Name: "email", Column: "email", Kind: String, MaxLen: 255},
	Field{Name: "phone", Column: "phone", Kind: String, MaxLen: 64},
	Field{Name: "notes", Column: "notes", Kind: String},
)

var Gallery = New("gallery_images",
	Field{Name: "title", Column: "title", Kind: String, MaxLen: 255},
	Field{Name: "description", Column: "description", Kind: String},
	Field{Name: "imageUrl", Column: "image_url", Kind: String, Required: true, MaxLen: 1024},
	Field{Name: "category", Column: "category", Kind: String, MaxLen: 64},
	Field{Name: "displayOrder", Column: "display_order", Kind: Int},
	Field{Name: "active", Column: "is_active", Kind: Bool},
)

var News = New("news_articles",
	Field{Name: "title", Column: "title", Kind: String, Required: true, MaxLen: 255},
	Field{Name: "excerpt", Column: "excerpt", Kind: String},
	Field{Name: "content", Column: "content", Kind: String, Required: true},
	Field{Name: "imageUrl", Column: "image_url", Kind: String, MaxLen: 1024},
	Field{Name: "category", Column: "category", Kind: String, MaxLen: 64},
	Field{Name: "author", Column: "author", Kind: String, MaxLen: 255},
	Field{Name: "status", Column: "status", Kind: String, OneOf: []string{model.NewsDraft, model.NewsPublished}},
	Field{Name: "publishedAt", Column: "published_at", Kind: Time, Nullable: true},
	Field{Name: "featured", Column: "featured", Kind: Bool},
	Field{Name: "active", Column: "is_active", Kind: Bool},
)

var Structures = New("structures",
	Field{Name: "name", Column: "name", Kind: String, Required: true, MaxLen: 191},
	Field{Name: "description", Column: "description", Kind: String},
)

// All lists every dictionary, keyed by table.
var All = map[string]Mapping{
	Tournaments.Table: Tournaments,
	CashGames.Table:   CashGames,
	Banners.Table:     Banners,
	Players.Table:     Players,
	Gallery.Table:     Gallery,
	News.Table:        News,
	Structures.Table:  Structures,
}
