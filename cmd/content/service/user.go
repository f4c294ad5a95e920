package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/docstore"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.mongodb.org/mongo-driver/bson"
)

type RegisterRequest struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   []byte
	Cover    []byte
}

// RegisterUser 注册用户：用户名转小写，密码 bcrypt，头像必填，封面可选
func (s *ContentService) RegisterUser(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	if err := required(map[string]string{
		"username": req.Username,
		"email":    req.Email,
		"fullName": req.FullName,
		"password": req.Password,
	}); err != nil {
		return nil, err
	}
	if len(req.Avatar) == 0 {
		return nil, errno.InvalidOperationErr.WithMessage("avatar file is required")
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.TrimSpace(req.Email)

	for field, value := range map[string]string{model.FieldUsername: username, model.FieldEmail: email} {
		_, err := s.store.Users.FindOne(ctx, docstore.Eq(field, value))
		if err == nil {
			return nil, errno.ConflictErr.WithMessage("user with email or username already exists")
		}
		if !errors.Is(err, docstore.ErrNoDocuments) {
			return nil, errno.Upstream(err)
		}
	}

	password, err := utils.Crypt(req.Password)
	if err != nil {
		return nil, errno.ServiceErr.Wrap(err)
	}
	avatar, err := s.blobs.Store(ctx, req.Avatar, oss.KindImage)
	if err != nil {
		return nil, errno.UpstreamErr.WithMessage("upload avatar failed").Wrap(err)
	}
	var cover string
	if len(req.Cover) > 0 {
		if cover, err = s.blobs.Store(ctx, req.Cover, oss.KindImage); err != nil {
			s.dropBlob(ctx, avatar, oss.KindImage)
			return nil, errno.UpstreamErr.WithMessage("upload cover image failed").Wrap(err)
		}
	}

	now := time.Now()
	user := &model.User{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		Password:     password,
		Avatar:       avatar,
		CoverImage:   cover,
		WatchHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.store.Users.Insert(ctx, user); err != nil {
		s.dropBlob(ctx, avatar, oss.KindImage)
		s.dropBlob(ctx, cover, oss.KindImage)
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return nil, errno.ConflictErr.WithMessage("user with email or username already exists")
		}
		return nil, errno.Upstream(err)
	}
	hlog.CtxInfof(ctx, "user %s registered as %s", user.Username, user.ID)
	return user, nil
}

// UpdateAccount 修改昵称与邮箱
func (s *ContentService) UpdateAccount(ctx context.Context, userID, fullName, email string) (*model.User, error) {
	if err := utils.ValidateIDs(userID); err != nil {
		return nil, err
	}
	if err := required(map[string]string{"fullName": fullName, "email": email}); err != nil {
		return nil, err
	}
	return update(ctx, s.store.Users, userID, docstore.Update{Set: bson.M{
		"fullName":       strings.TrimSpace(fullName),
		model.FieldEmail: strings.TrimSpace(email),
	}})
}

func (s *ContentService) UpdateAvatar(ctx context.Context, userID string, data []byte) (*model.User, error) {
	return s.replaceImage(ctx, userID, data, "avatar", func(u *model.User) string { return u.Avatar })
}

func (s *ContentService) UpdateCover(ctx context.Context, userID string, data []byte) (*model.User, error) {
	return s.replaceImage(ctx, userID, data, "coverImage", func(u *model.User) string { return u.CoverImage })
}

// replaceImage 先存新图再改引用，成功后删除旧图
func (s *ContentService) replaceImage(ctx context.Context, userID string, data []byte, field string, current func(*model.User) string) (*model.User, error) {
	if err := utils.ValidateIDs(userID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errno.InvalidOperationErr.WithMessage(field + " file is missing")
	}
	user, err := find(ctx, s.store.Users, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.blobs.Store(ctx, data, oss.KindImage)
	if err != nil {
		return nil, errno.UpstreamErr.WithMessage("upload " + field + " failed").Wrap(err)
	}
	updated, err := update(ctx, s.store.Users, userID, docstore.Update{Set: bson.M{field: url}})
	if err != nil {
		s.dropBlob(ctx, url, oss.KindImage)
		return nil, err
	}
	s.dropBlob(ctx, current(user), oss.KindImage)
	return updated, nil
}
