package models

// AllModels returns every model in dependency order for AutoMigrate: parents
// before children so foreign keys resolve on first run.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&File{},
		&Job{},
		&ApiKey{},
		&RefreshToken{},
	}
}
