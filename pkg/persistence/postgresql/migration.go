package postgresql

// migrations returns the ordered schema migrations for the onboarding store.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS clients (
				id UUID PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				email VARCHAR(255) NOT NULL,
				company VARCHAR(100),
				phone VARCHAR(50),
				project_type VARCHAR(50) NOT NULL,
				project_scope TEXT NOT NULL,
				budget_range VARCHAR(100),
				timeline VARCHAR(100),
				additional_notes TEXT,
				status VARCHAR(20) NOT NULL,
				resources JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_clients_status ON clients (status);
			CREATE INDEX IF NOT EXISTS idx_clients_created_at ON clients (created_at DESC);

			CREATE TABLE IF NOT EXISTS onboarding_progress (
				client_id UUID PRIMARY KEY REFERENCES clients (id) ON DELETE CASCADE,
				steps JSONB NOT NULL,
				current_step INTEGER NOT NULL DEFAULT 0,
				overall_status VARCHAR(20) NOT NULL,
				started_at TIMESTAMP WITH TIME ZONE,
				completed_at TIMESTAMP WITH TIME ZONE,
				progress_percentage INTEGER NOT NULL DEFAULT 0
			);
		`,
	}
}
