package history

const schema = `
-- The 'reviews' table logs every card outcome the user submitted from
-- this client: 1-4 ratings from the practice queue and learn/discard/save
-- dispositions from the proposal queue.
CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    lang TEXT NOT NULL,
    group_name TEXT NOT NULL,
    card_id INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    rating INTEGER DEFAULT 0,
    reviewed_at DATETIME NOT NULL
);

-- The 'reading_results' table logs graded reading test scores.
CREATE TABLE IF NOT EXISTS reading_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    reading_id INTEGER NOT NULL,
    score REAL NOT NULL,
    submitted_at DATETIME NOT NULL
);
`
