package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/task"
	"taskDesk/internal/models/user"
	"taskDesk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// UserWriter - хранилища, умеющие создавать пользователей
type UserWriter interface {
	Put(context.Context, *user.User) error
}

type Fixtures struct {
	Users []UserFixture `yaml:"users"`
	Tasks []TaskFixture `yaml:"tasks"`
}

type UserFixture struct {
	ID          string `yaml:"id"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
	Role        string `yaml:"role"`
	FCMToken    string `yaml:"fcm_token"`
}

// TaskFixture задаёт дедлайн смещением от момента загрузки ("36h", "-2h")
type TaskFixture struct {
	Title            string  `yaml:"title"`
	ClientName       string  `yaml:"client_name"`
	Description      string  `yaml:"description"`
	AssignedTo       string  `yaml:"assigned_to"`
	DeadlineIn       string  `yaml:"deadline_in"`
	Priority         string  `yaml:"priority"`
	Status           string  `yaml:"status"`
	TaskCategory     string  `yaml:"task_category"`
	TaskType         string  `yaml:"task_type"`
	EstimatedHours   float64 `yaml:"estimated_hours"`
	NetInvoiceAmount float64 `yaml:"net_invoice_amount"`
	CreatedBy        string  `yaml:"created_by"`
}

func Load(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение фикстур %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("разбор фикстур: %w", err)
	}

	for i, u := range f.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("фикстуры: пользователь #%d без id", i)
		}
		if !user.Role(u.Role).Valid() {
			return nil, fmt.Errorf("фикстуры: пользователь %s: неизвестная роль %q", u.ID, u.Role)
		}
	}
	for i, t := range f.Tasks {
		if t.Title == "" || t.AssignedTo == "" {
			return nil, fmt.Errorf("фикстуры: задача #%d без title или assigned_to", i)
		}
		if _, err := time.ParseDuration(t.DeadlineIn); err != nil {
			return nil, fmt.Errorf("фикстуры: задача %q: deadline_in: %w", t.Title, err)
		}
		if t.Status != "" && !task.Status(t.Status).Valid() {
			return nil, fmt.Errorf("фикстуры: задача %q: неизвестный статус %q", t.Title, t.Status)
		}
		if t.Priority != "" && !task.Priority(t.Priority).Valid() {
			return nil, fmt.Errorf("фикстуры: задача %q: неизвестный приоритет %q", t.Title, t.Priority)
		}
		if !task.ValidCategory(t.TaskCategory, t.TaskType) {
			return nil, fmt.Errorf("фикстуры: задача %q: тип %q не из категории %q", t.Title, t.TaskType, t.TaskCategory)
		}
	}
	return &f, nil
}

// Apply записывает пользователей всегда, а задачи - только в пустое хранилище,
// поэтому повторный запуск не плодит дубликаты.
func Apply(ctx context.Context, f *Fixtures, users UserWriter, tasks repository.TaskRepository, now time.Time) error {
	names := make(map[string]string, len(f.Users))
	for _, u := range f.Users {
		err := users.Put(ctx, &user.User{
			ID:          u.ID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Role:        user.Role(u.Role),
			FCMToken:    u.FCMToken,
			CreatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("загрузка пользователя %s: %w", u.ID, err)
		}
		names[u.ID] = u.DisplayName
	}

	existing, err := tasks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("проверка существующих задач: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Seed: Задачи уже есть, пропускаем", zap.Int("count", len(existing)))
		return nil
	}

	for _, tf := range f.Tasks {
		t := tf.toTask(now, names[tf.AssignedTo])
		if err := tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("загрузка задачи %q: %w", tf.Title, err)
		}
	}

	logger.Info("Seed: Фикстуры загружены",
		zap.Int("users", len(f.Users)),
		zap.Int("tasks", len(f.Tasks)))
	return nil
}

func (tf TaskFixture) toTask(now time.Time, assigneeName string) *task.Task {
	offset, _ := time.ParseDuration(tf.DeadlineIn)

	status := task.Status(tf.Status)
	if status == "" {
		status = task.StatusPending
	}
	priority := task.Priority(tf.Priority)
	if priority == "" {
		priority = task.PriorityMedium
	}

	return &task.Task{
		UUID:                 uuid.New(),
		ClientName:           tf.ClientName,
		Title:                tf.Title,
		Description:          tf.Description,
		AssignedEmployeeID:   tf.AssignedTo,
		AssignedEmployeeName: assigneeName,
		Deadline:             now.Add(offset),
		Priority:             priority,
		Status:               status,
		EstimatedDuration:    tf.EstimatedHours,
		NetInvoiceAmount:     tf.NetInvoiceAmount,
		TaskCategory:         tf.TaskCategory,
		TaskType:             tf.TaskType,
		CreatedAt:            now,
		CreatedBy:            tf.CreatedBy,
	}
}
