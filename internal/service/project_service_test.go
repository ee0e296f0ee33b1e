package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"peerhub/backend/internal/dto"
)

// ── 项目模块测试 ──

func newProjectService(env *testEnv) ProjectService {
	return NewProjectService(env.repo, zap.NewNop())
}

func TestProjectService_Create_Success(t *testing.T) {
	env := newTestEnv()
	svc := newProjectService(env)

	resp, err := svc.Create(context.Background(), &dto.CreateProjectRequest{
		Title:      "Go 并发练习",
		Category:   "golang",
		Difficulty: 2,
		MinReviews: 3,
	}, "staff-a")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.MinReviews != 3 || resp.Difficulty != 2 {
		t.Errorf("响应参数与请求不符: %+v", resp)
	}
	if !resp.IsActive {
		t.Error("新建项目应默认上线")
	}
}

func TestProjectService_Create_InvalidParams(t *testing.T) {
	env := newTestEnv()
	svc := newProjectService(env)

	cases := []struct {
		name string
		req  dto.CreateProjectRequest
	}{
		{"难度越界", dto.CreateProjectRequest{Title: "x", Category: "golang", Difficulty: 4, MinReviews: 1}},
		{"评审数为零", dto.CreateProjectRequest{Title: "x", Category: "golang", Difficulty: 1, MinReviews: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), &tc.req, "staff-a"); !errors.Is(err, ErrProjectInvalid) {
				t.Errorf("期望 ErrProjectInvalid，实际: %v", err)
			}
		})
	}
}

func TestProjectService_Update_Success(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 2)
	svc := newProjectService(env)

	resp, err := svc.Update(context.Background(), "proj-go",
		&dto.UpdateProjectRequest{MinReviews: intPtr(5)}, "staff-a")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.MinReviews != 5 {
		t.Errorf("期望min_reviews=5，实际=%d", resp.MinReviews)
	}
	if env.mocks.projects.projects["proj-go"].MinReviews != 5 {
		t.Error("更新应已落库")
	}
}

func TestProjectService_Update_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := newProjectService(env)

	_, err := svc.Update(context.Background(), "missing",
		&dto.UpdateProjectRequest{MinReviews: intPtr(2)}, "staff-a")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("期望 ErrProjectNotFound，实际: %v", err)
	}
}

func TestProjectService_Update_InvalidMerge(t *testing.T) {
	env := newTestEnv()
	env.seedProject("proj-go", "golang", 1, 2)
	svc := newProjectService(env)

	_, err := svc.Update(context.Background(), "proj-go",
		&dto.UpdateProjectRequest{Difficulty: intPtr(4)}, "staff-a")
	if !errors.Is(err, ErrProjectInvalid) {
		t.Errorf("合并后参数越界应返回 ErrProjectInvalid，实际: %v", err)
	}
	if env.mocks.projects.projects["proj-go"].Difficulty != 1 {
		t.Error("校验失败不应落库")
	}
}

func TestProjectService_GetByID_NotFound(t *testing.T) {
	env := newTestEnv()
	svc := newProjectService(env)

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("期望 ErrProjectNotFound，实际: %v", err)
	}
}
