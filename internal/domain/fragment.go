package domain

// KeyPrefix namespaces all keys this service writes to the store.
const KeyPrefix = "hirelens:"

// Fragment is a persisted chunk of résumé text with its embedding vector
// and the candidate metadata attached at ingestion time.
type Fragment struct {
	Vector []float32
	Text   string
	Name   string
	Role   string
	Skills []string
}

// RetrievedFragment is a single similarity-search hit. The vector is not
// carried back; callers only need the payload and the rank score.
type RetrievedFragment struct {
	Text   string
	Name   string
	Role   string
	Skills []string
	Score  float64
}
