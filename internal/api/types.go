package api

// Pagination defaults for list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// HealthStatus is the /health response.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// User is an account on the backend.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// DisplayName returns the nickname, falling back to the username.
func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// LoginRequest authenticates with a username or email.
type LoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Collection is a named word set.
type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	WordCount   int    `json:"word_count"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CollectionInput creates or updates a collection.
type CollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// CollectionPage is one page of collections.
type CollectionPage struct {
	Collections []Collection `json:"collections"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
}

// WordEntry is a word inside a collection listing.
type WordEntry struct {
	ID           string `json:"id"`
	ItemID       string `json:"item_id,omitempty"`
	Word         string `json:"word"`
	Phonetic     string `json:"phonetic,omitempty"`
	Chinese      string `json:"chinese,omitempty"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
	Status       int    `json:"status"`
	NextReviewAt string `json:"next_review_at,omitempty"`
}

// WordPage is one page of collection words.
type WordPage struct {
	Words    []WordEntry `json:"words"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ImportRequest adds words to a collection.
type ImportRequest struct {
	CollectionID string   `json:"collection_id"`
	Words        []string `json:"words"`
}

// ImportResult reports how the backend handled an import.
type ImportResult struct {
	Imported     int `json:"imported"`
	LLMGenerated int `json:"llm_generated"`
	Reused       int `json:"reused"`
	Duplicates   int `json:"duplicates"`
}

// StudyWord is a word in a study session batch.
type StudyWord struct {
	WordID       string   `json:"word_id"`
	ItemID       string   `json:"item_id"`
	Word         string   `json:"word"`
	Chinese      string   `json:"chinese"`
	Phonetic     string   `json:"phonetic"`
	PartOfSpeech string   `json:"part_of_speech"`
	Sentences    []string `json:"sentences"`
	Status       int      `json:"status"`
	AudioURL     string   `json:"audio_url,omitempty"`
}

// SessionResponse is the /api/study/session body.
type SessionResponse struct {
	SessionID    string      `json:"session_id"`
	CollectionID string      `json:"collection_id"`
	Mode         string      `json:"mode"`
	Words        []StudyWord `json:"words"`
	TotalCount   int         `json:"total_count"`
}

// SubmitRequest is the /api/study/submit body.
type SubmitRequest struct {
	ItemID    string `json:"item_id"`
	UserInput string `json:"user_input"`
	IsSkip    bool   `json:"is_skip"`
}

// SubmitResponse is the backend verdict for one answer.
type SubmitResponse struct {
	Success       bool   `json:"success"`
	Correct       bool   `json:"correct"`
	StatusUpdate  string `json:"status_update"`
	CurrentStatus int    `json:"current_status"`
	NextReviewAt  string `json:"next_review_at,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// DashboardStats summarizes the account.
type DashboardStats struct {
	TotalWords       int `json:"total_words"`
	TotalCollections int `json:"total_collections"`
	TodayLearned     int `json:"today_learned"`
	ToReview         int `json:"to_review"`
}
