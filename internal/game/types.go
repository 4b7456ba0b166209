package game

type PerformanceType string

const (
	PerformanceNormal   PerformanceType = "normal"
	PerformanceViral    PerformanceType = "viral"
	PerformanceFlop     PerformanceType = "flop"
	PerformanceComeback PerformanceType = "comeback"
)

type Song struct {
	ID                     string           `json:"id"`
	Title                  string           `json:"title"`
	Icon                   string           `json:"icon,omitempty"`
	Tier                   int              `json:"tier"`
	Released               bool             `json:"released"`
	ReleaseDate            int              `json:"release_date"`
	Streams                int64            `json:"streams"`
	LastWeekStreams        int64            `json:"last_week_streams"`
	IsActive               bool             `json:"is_active"`
	PerformanceType        PerformanceType  `json:"performance_type"`
	PerformanceStatusWeek  int              `json:"performance_status_week"`
	Featuring              []string         `json:"featuring,omitempty"`
	ReleasePlatforms       []string         `json:"release_platforms,omitempty"`
	PlatformStreams        map[string]int64 `json:"platform_streams,omitempty"`
	Hype                   float64          `json:"hype"`
	AIRapperOwner          string           `json:"ai_rapper_owner,omitempty"`
	AIRapperFeaturesPlayer bool             `json:"ai_rapper_features_player,omitempty"`
	CreatedWeek            int              `json:"created_week"`
}

// IsPlayerSong reports whether the player authored the song (as opposed to a collaboration
// owned by an AI rapper).
func (s Song) IsPlayerSong() bool {
	return s.AIRapperOwner == ""
}

type StreamingPlatform struct {
	Name         string `json:"name"`
	TotalStreams int64  `json:"total_streams"`
	Listeners    int64  `json:"listeners"`
	RevenueCents int64  `json:"revenue_cents"`
	IsUnlocked   bool   `json:"is_unlocked"`
	UnlockLevel  int    `json:"unlock_level"`
}

type AlbumType string

const (
	AlbumStandard    AlbumType = "standard"
	AlbumDeluxe      AlbumType = "deluxe"
	AlbumRemix       AlbumType = "remix"
	AlbumEP          AlbumType = "ep"
	AlbumCompilation AlbumType = "compilation"
)

type Album struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Type            AlbumType        `json:"type"`
	SongIDs         []string         `json:"song_ids"`
	ParentAlbumID   string           `json:"parent_album_id,omitempty"`
	Released        bool             `json:"released"`
	ReleaseWeek     int              `json:"release_week"`
	Streams         int64            `json:"streams"`
	LastWeekStreams int64            `json:"last_week_streams"`
	Sales           int64            `json:"sales"`
	RevenueCents    int64            `json:"revenue_cents"`
	PlatformStreams map[string]int64 `json:"platform_streams"`
	CriticalRating  float64          `json:"critical_rating"`
	FanRating       float64          `json:"fan_rating"`
	ChartPosition   int              `json:"chart_position"`
	CreatedWeek     int              `json:"created_week"`
}

type Relationship string

const (
	RelationshipNeutral Relationship = "neutral"
	RelationshipFriend  Relationship = "friend"
	RelationshipRival   Relationship = "rival"
	RelationshipEnemy   Relationship = "enemy"
)

type AIRapper struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Popularity       int          `json:"popularity"`
	MonthlyListeners int64        `json:"monthly_listeners"`
	TotalStreams     int64        `json:"total_streams"`
	Relationship     Relationship `json:"relationship"`
	FeatureCostCents int64        `json:"feature_cost_cents"`
	DeclinedRequests int          `json:"declined_requests"`
}

type FeatureRequest struct {
	RapperID    string `json:"rapper_id"`
	Tier        int    `json:"tier"`
	OfferCents  int64  `json:"offer_cents"`
	Week        int    `json:"week"`
	ExpiresWeek int    `json:"expires_week"`
}

type TrendType string

const (
	TrendRising  TrendType = "rising"
	TrendFalling TrendType = "falling"
	TrendHot     TrendType = "hot"
	TrendStable  TrendType = "stable"
)

type MarketTrend struct {
	ID                string    `json:"id"`
	Type              TrendType `json:"type"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	AffectedPlatforms []string  `json:"affected_platforms"`
	ImpactFactor      int       `json:"impact_factor"`
	StartWeek         int       `json:"start_week"`
	Duration          int       `json:"duration"`
}

// ActiveAt reports whether the trend still applies at week.
func (t MarketTrend) ActiveAt(week int) bool {
	return week >= t.StartWeek && week < t.StartWeek+t.Duration
}

type HypeType string

const (
	HypeSingle HypeType = "single"
	HypeEP     HypeType = "ep"
	HypeAlbum  HypeType = "album"
	HypeDeluxe HypeType = "deluxe"
	HypeTour   HypeType = "tour"
)

type HypeEvent struct {
	ID               string   `json:"id"`
	Type             HypeType `json:"type"`
	Title            string   `json:"title"`
	RelatedID        string   `json:"related_id,omitempty"`
	HypeLevel        float64  `json:"hype_level"`
	MaxHype          float64  `json:"max_hype"`
	DecayRate        float64  `json:"decay_rate"`
	TargetWeek       int      `json:"target_week"`
	Announced        bool     `json:"announced"`
	Released         bool     `json:"released"`
	OverduePenalized bool     `json:"overdue_penalized"`
	CreatedWeek      int      `json:"created_week"`
}

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeveritySevere   Severity = "severe"
)

type Impact struct {
	Reputation float64 `json:"reputation"`
	Streams    int64   `json:"streams"`
	Followers  int64   `json:"followers"`
}

type ResponseOption struct {
	Key                string  `json:"key"`
	Label              string  `json:"label"`
	ReputationModifier float64 `json:"reputation_modifier"`
	StreamModifier     int64   `json:"stream_modifier"`
	FollowerModifier   int64   `json:"follower_modifier"`
}

type Controversy struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	Title           string           `json:"title"`
	Severity        Severity         `json:"severity"`
	Impact          Impact           `json:"impact"`
	ResponseOptions []ResponseOption `json:"response_options"`
	IsActive        bool             `json:"is_active"`
	Week            int              `json:"week"`
	RapperID        string           `json:"rapper_id,omitempty"`
	ChosenResponse  string           `json:"chosen_response,omitempty"`
	ResolvedWeek    int              `json:"resolved_week,omitempty"`
}

type EventOption struct {
	Label       string  `json:"label"`
	Reputation  float64 `json:"reputation"`
	WealthCents int64   `json:"wealth_cents"`
	Followers   int64   `json:"followers"`
	Energy      int     `json:"energy"`
}

type RandomEvent struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Options      []EventOption `json:"options"`
	Week         int           `json:"week"`
	Resolved     bool          `json:"resolved"`
	ChosenOption int           `json:"chosen_option"`
}

type SocialPlatform struct {
	Name         string  `json:"name"`
	Followers    int64   `json:"followers"`
	Engagement   float64 `json:"engagement"`
	Posts        int     `json:"posts"`
	LastPostWeek int     `json:"last_post_week"`
}

type Concert struct {
	ID               string   `json:"id"`
	VenueName        string   `json:"venue_name"`
	Capacity         int64    `json:"capacity"`
	TicketPriceCents int64    `json:"ticket_price_cents"`
	Week             int      `json:"week"`
	Setlist          []string `json:"setlist"`
	Completed        bool     `json:"completed"`
	Attendance       int64    `json:"attendance"`
	RevenueCents     int64    `json:"revenue_cents"`
	Quality          float64  `json:"quality"`
}

type TourStop struct {
	City             string `json:"city"`
	Capacity         int64  `json:"capacity"`
	TicketPriceCents int64  `json:"ticket_price_cents"`
	Attendance       int64  `json:"attendance"`
	RevenueCents     int64  `json:"revenue_cents"`
}

type Tour struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Stops        []TourStop `json:"stops"`
	Setlist      []string   `json:"setlist"`
	CurrentIndex int        `json:"current_index"`
	StartWeek    int        `json:"start_week"`
	Active       bool       `json:"active"`
	Completed    bool       `json:"completed"`
	RevenueCents int64      `json:"revenue_cents"`
	BonusCents   int64      `json:"bonus_cents"`

	// TicketMultiplier comes from the tour's hype campaign; 0 when there was none.
	TicketMultiplier float64 `json:"ticket_multiplier,omitempty"`
}

type MerchItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	CostCents  int64  `json:"cost_cents"`
	Stock      int64  `json:"stock"`
	Sold       int64  `json:"sold"`
}

type WeeklyStats struct {
	Week          int     `json:"week"`
	TotalStreams  int64   `json:"total_streams"`
	Followers     int64   `json:"followers"`
	Listeners     int64   `json:"listeners"`
	WealthCents   int64   `json:"wealth_cents"`
	Reputation    float64 `json:"reputation"`
	SongsReleased int     `json:"songs_released"`
}

type PlayerStats struct {
	CareerLevel int     `json:"career_level"`
	Reputation  float64 `json:"reputation"`
	Creativity  float64 `json:"creativity"`
	Marketing   float64 `json:"marketing"`
	FanLoyalty  float64 `json:"fan_loyalty"`
	StagePower  float64 `json:"stage_power"`
	WealthCents int64   `json:"wealth_cents"`
	Energy      int     `json:"energy"`
	MaxEnergy   int     `json:"max_energy"`
}

type SubscriptionInfo struct {
	SubscriptionType string `json:"subscription_type"`
}

// State is the whole save. It round-trips through JSON verbatim.
type State struct {
	Week              int                 `json:"week"`
	PlayerName        string              `json:"player_name"`
	Stats             PlayerStats         `json:"stats"`
	Subscription      SubscriptionInfo    `json:"subscription"`
	Songs             []Song              `json:"songs"`
	Albums            []Album             `json:"albums"`
	Platforms         []StreamingPlatform `json:"platforms"`
	Social            []SocialPlatform    `json:"social"`
	Rappers           []AIRapper          `json:"rappers"`
	FeatureRequests   []FeatureRequest    `json:"feature_requests"`
	ActiveTrends      []MarketTrend       `json:"active_trends"`
	PastTrends        []MarketTrend       `json:"past_trends"`
	HypeEvents        []HypeEvent         `json:"hype_events"`
	PastHypeEvents    []HypeEvent         `json:"past_hype_events"`
	Controversies     []Controversy       `json:"controversies"`
	PastControversies []Controversy       `json:"past_controversies"`
	RandomEvents      []RandomEvent       `json:"random_events"`
	Concerts          []Concert           `json:"concerts"`
	Tours             []Tour              `json:"tours"`
	Merch             []MerchItem         `json:"merch"`
	WeeklyStats       []WeeklyStats       `json:"weekly_stats"`
}

type EventKind string

const (
	EventSongViral           EventKind = "song_viral"
	EventSongFlop            EventKind = "song_flop"
	EventSongComeback        EventKind = "song_comeback"
	EventSongExpired         EventKind = "song_expired"
	EventTrendStarted        EventKind = "trend_started"
	EventTrendEnded          EventKind = "trend_ended"
	EventHypeOverdue         EventKind = "hype_overdue"
	EventHypeReleased        EventKind = "hype_released"
	EventControversy         EventKind = "controversy"
	EventControversyResolved EventKind = "controversy_resolved"
	EventFeatureRequest      EventKind = "feature_request"
	EventFeatureExpired      EventKind = "feature_request_expired"
	EventAlbumFailed         EventKind = "album_update_failed"
	EventMerchSold           EventKind = "merch_sold"
	EventConcertPlayed       EventKind = "concert_played"
	EventTourStop            EventKind = "tour_stop"
	EventTourCompleted       EventKind = "tour_completed"
	EventRandom              EventKind = "random_event"
	EventCareerLevelUp       EventKind = "career_level_up"
	EventPlatformUnlocked    EventKind = "platform_unlocked"
)

// Event is a notification-worthy fact produced by the weekly pass. Presentation layers
// decide how to render it.
type Event struct {
	Kind    EventKind `json:"kind"`
	Week    int       `json:"week"`
	Subject string    `json:"subject,omitempty"`
	Message string    `json:"message"`
}

// WeekReport is what one AdvanceWeek call hands back to callers.
type WeekReport struct {
	Week   int         `json:"week"`
	Stats  WeeklyStats `json:"stats"`
	Events []Event     `json:"events"`
}

type NewGameInput struct {
	PlayerName       string
	SubscriptionType string
	Seed             int64
}

type CreateSongInput struct {
	Title     string
	Tier      int
	Featuring []string
}

type ReleaseSongInput struct {
	SongID    string
	Title     string
	Icon      string
	Platforms []string
}

type CreateAlbumInput struct {
	Title   string
	Type    AlbumType
	SongIDs []string
}

type CreateDeluxeInput struct {
	ParentAlbumID string
	Title         string
	ExtraSongIDs  []string
}

type CreateRemixInput struct {
	ParentAlbumID string
	Title         string
}

type ScheduleConcertInput struct {
	VenueName        string
	Capacity         int64
	TicketPriceCents int64
	Week             int
	Setlist          []string
}

type StartTourInput struct {
	Name        string
	Stops       []TourStop
	Setlist     []string
	HypeEventID string
}

type AnnounceInput struct {
	Type       HypeType
	Title      string
	RelatedID  string
	TargetWeek int
}

type FeatureOutcome struct {
	Accepted  bool   `json:"accepted"`
	CostCents int64  `json:"cost_cents"`
	SongID    string `json:"song_id,omitempty"`
	Message   string `json:"message"`
}
