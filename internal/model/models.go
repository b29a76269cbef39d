package model

import (
	"time"

	"gorm.io/datatypes"
)

// ReadingMaterial 一份上传的 markdown 资料（摘要或适用报告）
type ReadingMaterial struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	BookTitle string       `json:"bookTitle" gorm:"size:255;not null;index:idx_materials_lookup,priority:1"`
	FileName  string       `json:"fileName" gorm:"size:255;not null;index:idx_materials_lookup,priority:3"`
	Content   string       `json:"content" gorm:"type:text"`
	Type      MaterialType `json:"type" gorm:"size:20;not null;index:idx_materials_lookup,priority:2"`
	CreatedAt time.Time    `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time    `json:"-"`
}

func (ReadingMaterial) TableName() string {
	return "reading_materials"
}

// ReadingDiscussion 一次登记产生的两份资料的配对
type ReadingDiscussion struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	DiscussionDate    datatypes.Date   `json:"discussionDate"`
	BaseMaterialID    uint             `json:"baseMaterialId" gorm:"index;not null"`
	ReadingMaterialID uint             `json:"readingMaterialId" gorm:"index;not null"`
	BaseMaterial      *ReadingMaterial `json:"baseMaterial,omitempty" gorm:"foreignKey:BaseMaterialID"`
	ReadingMaterial   *ReadingMaterial `json:"readingMaterial,omitempty" gorm:"foreignKey:ReadingMaterialID"`
	CreatedAt         time.Time        `json:"createdAt"`
}

func (ReadingDiscussion) TableName() string {
	return "reading_discussions"
}

// LegacyBookDiscussion 旧版反范式表，仅作为迁移来源
type LegacyBookDiscussion struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	BookTitle            string    `json:"book_title" gorm:"size:255;not null"`
	SummaryContent       string    `json:"summary_content" gorm:"type:text;not null"`
	ApplicationContent   string    `json:"application_content" gorm:"type:text;not null"`
	SummaryFileName      string    `json:"summary_file_name" gorm:"size:255;not null"`
	ApplicationFileName  string    `json:"application_file_name" gorm:"size:255;not null"`
	MigratedDiscussionID *uint     `json:"migrated_discussion_id" gorm:"index"`
	CreatedAt            time.Time `json:"created_at"`
}

func (LegacyBookDiscussion) TableName() string {
	return "book_discussions"
}

// BookDiscussion /api/discussions 返回的视图，由讨论及其两份资料拼装
type BookDiscussion struct {
	ID                  uint      `json:"id"`
	BookTitle           string    `json:"book_title"`
	SummaryContent      string    `json:"summary_content"`
	ApplicationContent  string    `json:"application_content"`
	SummaryFileName     string    `json:"summary_file_name"`
	ApplicationFileName string    `json:"application_file_name"`
	DiscussionDate      string    `json:"discussion_date"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewBookDiscussion 由预加载了两份资料的讨论构建视图
func NewBookDiscussion(d *ReadingDiscussion) BookDiscussion {
	view := BookDiscussion{
		ID:             d.ID,
		DiscussionDate: time.Time(d.DiscussionDate).Format(DateLayout),
		CreatedAt:      d.CreatedAt,
	}
	if d.BaseMaterial != nil {
		view.BookTitle = d.BaseMaterial.BookTitle
		view.SummaryContent = d.BaseMaterial.Content
		view.SummaryFileName = d.BaseMaterial.FileName
	}
	if d.ReadingMaterial != nil {
		if view.BookTitle == "" {
			view.BookTitle = d.ReadingMaterial.BookTitle
		}
		view.ApplicationContent = d.ReadingMaterial.Content
		view.ApplicationFileName = d.ReadingMaterial.FileName
	}
	return view
}

// DateLayout 讨论日期格式
const DateLayout = "2006-01-02"

// Character 顺序抽签产生的参与者角色，不入库
type Character struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Ability       string `json:"ability"`
	SpecialEffect string `json:"specialEffect"`
}

// 角色抽签的固定取值
var (
	CharacterRoles     = []string{"발표자", "질문자", "토론자"}
	CharacterAbilities = []string{"명확한 설명", "깊이 있는 질문", "활발한 토론"}
	CharacterEffects   = []string{EffectExtraMinute, EffectExtraTurn, EffectFirstSpeaker}
)

const (
	EffectExtraMinute  = "시간 +1분"
	EffectExtraTurn    = "발언권 2회"
	EffectFirstSpeaker = "우선 발언"
)
