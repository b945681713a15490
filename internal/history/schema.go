package history

// schema mirrors herald's storage.Schema idiom: one Go string constant
// holding the full CREATE TABLE set, executed once at Store construction.
const schema = `
CREATE TABLE IF NOT EXISTS summary_history (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    article_url TEXT NOT NULL,
    article_title TEXT NOT NULL,
    content_excerpt TEXT NOT NULL,
    summary_text TEXT NOT NULL,
    summary_language TEXT NOT NULL,
    original_length INTEGER NOT NULL,
    summary_length INTEGER NOT NULL,
    keywords TEXT NOT NULL,
    category TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    created_at_second INTEGER NOT NULL,
    UNIQUE(user_id, article_url, created_at_second)
);

CREATE INDEX IF NOT EXISTS idx_summary_history_user ON summary_history(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS feedback (
    user_id TEXT NOT NULL,
    article_url TEXT NOT NULL,
    rating INTEGER NOT NULL,
    feedback_type TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id);

CREATE TABLE IF NOT EXISTS recommendation_clicks (
    user_id TEXT NOT NULL,
    article_url TEXT NOT NULL,
    clicked_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recommendation_clicks_user ON recommendation_clicks(user_id);
`
