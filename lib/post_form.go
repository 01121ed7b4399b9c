package lib

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	shared "storybox-cli/shared"
	"storybox-cli/types"
)

const croppedImageName = "cropped-image.jpg"

type PostFormApi interface {
	types.PostsApi
	types.TagsApi
	types.UploadApi
}

// ImageSource is a local image to attach to a post. A nil Crop takes the
// centered square; NoCrop uploads the file as it is.
type ImageSource struct {
	Path   string
	Crop   *CropRect
	NoCrop bool
}

type PostDraft struct {
	Content    string
	Image      *ImageSource
	DeriveTags bool
	Tags       []string
}

type PostEdit struct {
	Content     *string
	Image       *ImageSource
	RemoveImage bool
	DeriveTags  bool
	Tags        []string
}

// SubmitPost validates the draft, uploads its image and derives tags if asked
// to, then creates the post. Nothing is uploaded when validation fails.
func SubmitPost(ctx context.Context, api PostFormApi, draft PostDraft) (*shared.Post, error) {
	req := shared.CreatePostRequest{
		Content: strings.TrimSpace(draft.Content),
		Tags:    draft.Tags,
	}

	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		return nil, apiErr
	}

	if draft.Image != nil {
		uri, err := PrepareImage(ctx, api, *draft.Image)
		if err != nil {
			return nil, err
		}
		req.ImageUri = uri
	}

	if draft.DeriveTags {
		tags, err := deriveTags(ctx, api, req.Content)
		if err != nil {
			return nil, err
		}
		req.Tags = mergeTags(req.Tags, tags)
	}

	post, apiErr := api.CreatePost(ctx, req)
	if apiErr != nil {
		return nil, apiErr
	}

	return post, nil
}

func EditPost(ctx context.Context, api PostFormApi, postId string, edit PostEdit) (*shared.Post, error) {
	req := shared.UpdatePostRequest{Tags: edit.Tags}

	if edit.Content != nil {
		content := strings.TrimSpace(*edit.Content)
		if content == "" {
			return nil, shared.NewValidationError("content", "content can't be empty")
		}
		req.Content = &content
	}

	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		return nil, apiErr
	}

	if edit.RemoveImage && edit.Image != nil {
		return nil, shared.NewValidationError("image_uri", "can't both replace and remove the image")
	}

	if edit.RemoveImage {
		empty := ""
		req.ImageUri = &empty
	} else if edit.Image != nil {
		uri, err := PrepareImage(ctx, api, *edit.Image)
		if err != nil {
			return nil, err
		}
		req.ImageUri = &uri
	}

	if edit.DeriveTags {
		text := ""
		if req.Content != nil {
			text = *req.Content
		} else {
			current, apiErr := api.GetPost(ctx, postId)
			if apiErr != nil {
				return nil, fmt.Errorf("error loading post: %w", apiErr)
			}
			text = current.Content
		}

		tags, err := deriveTags(ctx, api, text)
		if err != nil {
			return nil, err
		}
		req.Tags = mergeTags(req.Tags, tags)
	}

	post, apiErr := api.UpdatePost(ctx, postId, req)
	if apiErr != nil {
		return nil, apiErr
	}

	return post, nil
}

// PrepareImage reads, crops and uploads a local image, returning its url.
func PrepareImage(ctx context.Context, api types.UploadApi, src ImageSource) (string, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return "", fmt.Errorf("error reading image: %v", err)
	}

	name := src.Path
	if !src.NoCrop {
		img, err := DecodeImage(bytes.NewReader(data))
		if err != nil {
			return "", err
		}

		crop := CenterSquare(img.Bounds())
		if src.Crop != nil {
			crop = *src.Crop
		}

		data, err = CropImage(img, crop)
		if err != nil {
			return "", err
		}
		name = croppedImageName
	}

	uri, apiErr := api.UploadImage(ctx, name, data)
	if apiErr != nil {
		return "", fmt.Errorf("error uploading image: %w", apiErr)
	}

	return uri, nil
}

func deriveTags(ctx context.Context, api types.TagsApi, text string) ([]string, error) {
	tags, apiErr := api.GetGenres(ctx, text)
	if apiErr != nil {
		return nil, fmt.Errorf("error deriving tags: %w", apiErr)
	}
	return tags, nil
}

func mergeTags(lists ...[]string) []string {
	var res []string
	seen := map[string]bool{}
	for _, list := range lists {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			key := strings.ToLower(tag)
			if tag == "" || seen[key] {
				continue
			}
			seen[key] = true
			res = append(res, tag)
		}
	}
	return res
}
