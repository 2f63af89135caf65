package models

import "time"

const (
	MinOptionIndex = 1
	MaxOptionIndex = 4
)

type Question struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	QuizID        uint    `json:"quiz_id" gorm:"not null;index"`
	Position      int     `json:"position" gorm:"not null;default:0"`
	Title         string  `json:"title" gorm:"not null;size:200"`
	Content       string  `json:"content" gorm:"type:text;not null"`
	Option1       string  `json:"option1" gorm:"not null;size:500"`
	Option2       string  `json:"option2" gorm:"not null;size:500"`
	Option3       *string `json:"option3" gorm:"size:500"`
	Option4       *string `json:"option4" gorm:"size:500"`
	CorrectAnswer int     `json:"correct_answer" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionView is the public projection of a question. It never carries the correct answer.
// Options is positional: slot i holds option i+1, null when the question does not offer it.
type QuestionView struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Options []*string `json:"options"`
}

// Option returns the text of the 1-based option and whether the question offers it.
func (q *Question) Option(index int) (string, bool) {
	var text *string
	switch index {
	case 1:
		text = &q.Option1
	case 2:
		text = &q.Option2
	case 3:
		text = q.Option3
	case 4:
		text = q.Option4
	}
	if text == nil || *text == "" {
		return "", false
	}
	return *text, true
}

// HasOption reports whether the 1-based option is populated.
func (q *Question) HasOption(index int) bool {
	_, ok := q.Option(index)
	return ok
}

// Options returns all option slots in order, nil where an option is not offered.
func (q *Question) Options() []*string {
	options := make([]*string, 0, MaxOptionIndex)
	for i := MinOptionIndex; i <= MaxOptionIndex; i++ {
		text, ok := q.Option(i)
		if !ok {
			options = append(options, nil)
			continue
		}
		options = append(options, &text)
	}
	return options
}

// IsCorrect reports whether the 1-based option matches the correct answer.
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectAnswer
}

func (q *Question) View() QuestionView {
	return QuestionView{
		ID:      q.ID,
		Title:   q.Title,
		Content: q.Content,
		Options: q.Options(),
	}
}
