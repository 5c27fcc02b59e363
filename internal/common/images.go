package common

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"
	"github.com/questx-lab/contest-backoffice/pkg/errorx"
	"github.com/questx-lab/contest-backoffice/pkg/storage"
	"github.com/questx-lab/contest-backoffice/pkg/xcontext"
)

// ProcessImage reads the image in form field key of the current request,
// shrinks it to at most maxWidth pixels wide and uploads it under prefix.
func ProcessImage(
	ctx context.Context, fileStorage storage.Storage, key, prefix string, maxWidth uint,
) (*storage.UploadResponse, error) {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	maxSize := int64(xcontext.Configs(ctx).File.MaxSize)
	if err := req.ParseMultipartForm(maxSize); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Request must be multipart form")
	}

	file, header, err := req.FormFile(key)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Error retrieving the file")
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, errorx.New(errorx.BadRequest, "File too large (at most %d bytes)", maxSize)
	}

	mime := header.Header.Get("Content-Type")
	img, err := decodeImg(mime, file)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid image: %v", err)
	}

	if maxWidth > 0 && uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos2)
	}

	b, outMime, err := encodeImg(mime, img)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode image: %v", err)
		return nil, errorx.Unknown
	}

	resp, err := fileStorage.Upload(ctx, &storage.UploadObject{
		Prefix:   prefix,
		FileName: header.Filename,
		Mime:     outMime,
		Data:     b,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload image: %v", err)
		return nil, errorx.Unknown
	}

	return resp, nil
}

func decodeImg(mime string, data io.Reader) (img image.Image, err error) {
	switch mime {
	case "image/jpeg":
		img, err = jpeg.Decode(data)
	case "image/png", "application/octet-stream":
		img, err = png.Decode(data)
	case "image/gif":
		img, err = gif.Decode(data)
	default:
		return nil, fmt.Errorf("only jpeg, gif or png are accepted")
	}

	return img, err
}

func encodeImg(mime string, img image.Image) ([]byte, string, error) {
	buf := new(bytes.Buffer)

	var err error
	switch mime {
	case "image/jpeg":
		err = jpeg.Encode(buf, img, nil)
	case "image/png", "application/octet-stream":
		err = png.Encode(buf, img)
		mime = "image/png"
	case "image/gif":
		err = gif.Encode(buf, img, nil)
	default:
		return nil, "", fmt.Errorf("only jpeg, gif or png are accepted")
	}

	if err != nil {
		return nil, "", err
	}

	return buf.Bytes(), mime, nil
}
