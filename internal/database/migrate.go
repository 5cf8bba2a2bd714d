package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/questboard/internal/model"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        email         VARCHAR(255) NOT NULL,
        password_hash VARCHAR(255) NOT NULL,
        role          VARCHAR(16)  NOT NULL DEFAULT 'PLAYER',
        is_active     TINYINT(1)   NOT NULL DEFAULT 1,
        timezone      VARCHAR(64)  NOT NULL DEFAULT '',
        created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        UNIQUE KEY uq_users_email (email)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
        id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        user_id    BIGINT UNSIGNED NOT NULL,
        token_hash CHAR(64) NOT NULL,
        expires_at DATETIME NOT NULL,
        revoked_at DATETIME NULL,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        UNIQUE KEY uq_refresh_hash (token_hash),
        KEY idx_refresh_user (user_id),
        CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS user_stats (
        user_id            BIGINT UNSIGNED PRIMARY KEY,
        experience         INT UNSIGNED NOT NULL DEFAULT 0,
        coins              INT UNSIGNED NOT NULL DEFAULT 0,
        level              INT UNSIGNED NOT NULL DEFAULT 1,
        current_streak     INT UNSIGNED NOT NULL DEFAULT 0,
        longest_streak     INT UNSIGNED NOT NULL DEFAULT 0,
        last_activity_date DATE NULL,
        quests_completed   INT UNSIGNED NOT NULL DEFAULT 0,
        equipped_avatar    VARCHAR(64) NULL,
        updated_at         DATETIME NOT NULL,
        CONSTRAINT fk_stats_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS quest_templates (
        id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        owner_id    BIGINT UNSIGNED NOT NULL,
        title       VARCHAR(200) NOT NULL,
        description TEXT NOT NULL,
        category    VARCHAR(16) NOT NULL,
        is_active   TINYINT(1) NOT NULL DEFAULT 1,
        created_at  DATETIME NOT NULL,
        KEY idx_templates_owner (owner_id, category, is_active),
        CONSTRAINT fk_templates_owner FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS quests (
        id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        owner_id     BIGINT UNSIGNED NOT NULL,
        title        VARCHAR(200) NOT NULL,
        description  TEXT NOT NULL,
        category     VARCHAR(16) NOT NULL,
        due_date     DATETIME NULL,
        completed    TINYINT(1) NOT NULL DEFAULT 0,
        completed_at DATETIME NULL,
        created_at   DATETIME NOT NULL,
        template_id  BIGINT UNSIGNED NULL,
        reset_date   DATE NULL,
        is_recurring TINYINT(1) NOT NULL DEFAULT 0,
        KEY idx_quests_owner (owner_id, completed, category),
        KEY idx_quests_completed_at (owner_id, completed_at),
        UNIQUE KEY uq_quests_template_period (template_id, reset_date),
        CONSTRAINT fk_quests_owner FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE,
        CONSTRAINT fk_quests_template FOREIGN KEY (template_id) REFERENCES quest_templates(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS badges (
        id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
        name        VARCHAR(64) NOT NULL,
        description VARCHAR(255) NOT NULL,
        icon        VARCHAR(32) NOT NULL,
        kind        VARCHAR(16) NOT NULL,
        threshold   INT UNSIGNED NOT NULL,
        UNIQUE KEY uq_badges_name (name)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS earned_badges (
        user_id   BIGINT UNSIGNED NOT NULL,
        badge_id  BIGINT UNSIGNED NOT NULL,
        earned_at DATETIME NOT NULL,
        PRIMARY KEY (user_id, badge_id),
        CONSTRAINT fk_earned_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
        CONSTRAINT fk_earned_badge FOREIGN KEY (badge_id) REFERENCES badges(id) ON DELETE CASCADE
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

// BadgeUpserter is satisfied by repository.BadgeRepo.
type BadgeUpserter interface {
	Upsert(ctx context.Context, b *model.Badge) error
}

// SeedBadges upserts every catalog badge by name, so rerunning it refreshes
// descriptions and thresholds without touching earned rows.
func SeedBadges(ctx context.Context, repo BadgeUpserter, catalog []model.Badge) error {
	for _, b := range catalog {
		b := b
		if err := repo.Upsert(ctx, &b); err != nil {
			return fmt.Errorf("seed badge %q: %w", b.Name, err)
		}
	}
	return nil
}
