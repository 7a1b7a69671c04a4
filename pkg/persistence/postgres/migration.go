package postgres

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Activity log: append-only, purged by the retention sweep.
			CREATE TABLE log_entries (
				id UUID PRIMARY KEY,
				action VARCHAR(50) NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (status IN ('info', 'success', 'warning', 'error')),
				summary TEXT NOT NULL,
				criteria JSONB,
				found INT NOT NULL DEFAULT 0,
				attempted INT NOT NULL DEFAULT 0,
				deleted INT NOT NULL DEFAULT 0,
				errors INT NOT NULL DEFAULT 0,
				details JSONB,
				acting_user VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_log_entries_action ON log_entries(action);
			CREATE INDEX idx_log_entries_status ON log_entries(status);
			CREATE INDEX idx_log_entries_created_at ON log_entries(created_at);
		`,
		2: `
			-- Content store: items, taxonomy terms, and their assignments.
			CREATE TABLE items (
				id BIGINT PRIMARY KEY,
				title TEXT NOT NULL,
				content_type VARCHAR(255) NOT NULL
			);

			CREATE INDEX idx_items_content_type ON items(content_type);

			CREATE TABLE terms (
				taxonomy VARCHAR(255) NOT NULL,
				id BIGINT NOT NULL,
				name TEXT NOT NULL,
				slug VARCHAR(255) NOT NULL,
				count BIGINT NOT NULL DEFAULT 0,
				PRIMARY KEY (taxonomy, id)
			);

			CREATE TABLE item_terms (
				item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
				taxonomy VARCHAR(255) NOT NULL,
				term_id BIGINT NOT NULL,
				PRIMARY KEY (item_id, taxonomy, term_id),
				FOREIGN KEY (taxonomy, term_id) REFERENCES terms(taxonomy, id) ON DELETE CASCADE
			);

			CREATE INDEX idx_item_terms_term ON item_terms(taxonomy, term_id);
		`,
	}
}
