package mocks

import "fmt"

// Call は記録されたコールバックの呼び出しです
type Call struct {
	Kind    string
	Title   string
	Text    string
	Options []string
}

// MockCallbacks はテスト用のコールバックモック
type MockCallbacks struct {
	Calls []Call

	// Answers は Prompt のタイトルごとの回答です。未設定の場合は最後の選択肢を選びます。
	Answers map[string]string
}

// NewMockCallbacks は新しいMockCallbacksを作成します
func NewMockCallbacks() *MockCallbacks {
	return &MockCallbacks{Answers: make(map[string]string)}
}

// Message は呼び出しを記録します
func (m *MockCallbacks) Message(title, text string) {
	m.Calls = append(m.Calls, Call{Kind: "message", Title: title, Text: text})
}

// Prompt は呼び出しを記録し、設定された回答を返します
func (m *MockCallbacks) Prompt(title, text string, options []string) string {
	m.Calls = append(m.Calls, Call{Kind: "prompt", Title: title, Text: text, Options: options})
	if a, ok := m.Answers[title]; ok {
		return a
	}
	if len(options) == 0 {
		return ""
	}
	return options[len(options)-1]
}

// Error は呼び出しを記録します
func (m *MockCallbacks) Error(title, text string) {
	m.Calls = append(m.Calls, Call{Kind: "error", Title: title, Text: text})
}

// Find は kind の呼び出しを返します
func (m *MockCallbacks) Find(kind string) []Call {
	var out []Call
	for _, c := range m.Calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// String は記録された呼び出しを返します
func (m *MockCallbacks) String() string {
	return fmt.Sprintf("%+v", m.Calls)
}
