package model

import "time"

// QuestTemplate is the recipe for recurring quest instances, stored in the
// `quest_templates` table.  Templates are deactivated instead of deleted so
// existing instances keep a valid template_id.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user who owns the template.
//  Title       – copied onto each materialized quest.
//  Description – copied onto each materialized quest.
//  Category    – daily or weekly.
//  IsActive    – false once the owner retires the template.
//  CreatedAt   – creation timestamp.
type QuestTemplate struct {
	ID          uint64    `json:"id"`
	OwnerID     uint64    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
