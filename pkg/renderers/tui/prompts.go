package tui

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-intake/pkg/field"
)

// PromptFunc asks for one field and reports the answer through onChange.
// current is the value held in form state before the prompt.
type PromptFunc func(ctx context.Context, driver PromptDriver, desc field.Descriptor, current any, onChange field.ChangeFunc) error

// KindPrompts returns the built-in prompt for every kind in field.Kinds().
// Custom descriptors go through the renderer's custom prompt table first.
func KindPrompts() map[field.Kind]PromptFunc {
	return map[field.Kind]PromptFunc{
		field.KindText:       promptText,
		field.KindPhone:      promptPhone,
		field.KindDatePicker: promptDate,
		field.KindSelect:     promptSelect,
		field.KindTextArea:   promptTextArea,
		field.KindCheckbox:   promptCheckbox,
		field.KindCustom:     promptSelect,
	}
}

func promptText(ctx context.Context, driver PromptDriver, desc field.Descriptor, current any, onChange field.ChangeFunc) error {
	answer, err := driver.Input(ctx, InputConfig{
		Message: label(desc),
		Default: text(current),
		Help:    desc.Placeholder,
	})
	if err != nil {
		return err
	}
	onChange(answer)
	return nil
}

func promptPhone(ctx context.Context, driver PromptDriver, desc field.Descriptor, current any, onChange field.ChangeFunc) error {
	answer, err := driver.Input(ctx, InputConfig{
		Message: label(desc),
		Default: text(current),
		Help:    "International format, e.g. +1 555 123 4567",
		Validator: func(raw string) error {
			_, err := field.NormalizePhone(raw, field.DefaultRegion)
			return err
		},
	})
	if err != nil {
		return err
	}
	normalized, err := field.NormalizePhone(answer, field.DefaultRegion)
	if err != nil {
		return err
	}
	if normalized == "" {
		onChange(nil)
		return nil
	}
	onChange(normalized)
	return nil
}

func promptDate(ctx context.Context, driver PromptDriver, desc field.Descriptor, current any, onChange field.ChangeFunc) error {
	pattern := desc.EffectiveDateFormat()
	var initial string
	if at, ok := current.(time.Time); ok && !at.IsZero() {
		initial = field.FormatDate(at, pattern)
	}

	answer, err := driver.Input(ctx, InputConfig{
		Message: label(desc),
		Default: initial,
		Help:    "Format " + pattern + "; leave blank to clear",
		Validator: func(raw string) error {
			_, _, err := field.ParseDate(raw, pattern)
			return err
		},
	})
	if err != nil {
		return err
	}
	at, present, err := field.ParseDate(answer, pattern)
	if err != nil {
		return err
	}
	if !present {
		onChange(nil)
		return nil
	}
	onChange(at)
	return nil
}

// promptSelect also serves custom descriptors that carry options, such as
// radio groups.
func promptSelect(ctx context.Context, driver PromptDriver, desc field.Descriptor, current any, onChange field.ChangeFunc) error {
	if len(desc.Options) == 0 {
		return nil
	}
	labels := make([]string, len(desc.Options))
	selected := 0
	for i, opt := range desc.Options {
		labels[i] = opt.Label
		if labels[i] == "" {
			labels[i] = opt.Value
		}
		if opt.Value == text(current) {
			selected = i
		}
	}

	idx, err := driver.Select(ctx, SelectConfig{
		Message:      label(desc),
		Options:      labels,
		DefaultIndex: selected,
		Help:         desc.Placeholder,
		PageSize:     10,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(desc.Options) {
		return fmt.Errorf("tui: %s: selection %d out of range", desc.Name, idx)
	}
	onChange(desc.Options[idx].Value)
	return nil
}

func promptTextArea(ctx context.Context, driver PromptDriver, desc field.Descriptor, current any, onChange field.ChangeFunc) error {
	answer, err := driver.TextArea(ctx, TextAreaConfig{
		Message: label(desc),
		Default: text(current),
		Help:    desc.Placeholder,
	})
	if err != nil {
		return err
	}
	onChange(answer)
	return nil
}

func promptCheckbox(ctx context.Context, driver PromptDriver, desc field.Descriptor, current any, onChange field.ChangeFunc) error {
	checked, _ := current.(bool)
	answer, err := driver.Confirm(ctx, ConfirmConfig{
		Message: label(desc),
		Default: checked,
	})
	if err != nil {
		return err
	}
	onChange(answer)
	return nil
}

// FilePrompt asks for a path and stores the file as a *field.Attachment.
// A blank answer clears the field. read defaults to os.ReadFile.
func FilePrompt(read func(string) ([]byte, error)) PromptFunc {
	if read == nil {
		read = os.ReadFile
	}
	return func(ctx context.Context, driver PromptDriver, desc field.Descriptor, current any, onChange field.ChangeFunc) error {
		var initial string
		if attachment, ok := current.(*field.Attachment); ok && attachment != nil {
			initial = attachment.FileName
		}
		answer, err := driver.Input(ctx, InputConfig{
			Message: label(desc),
			Default: initial,
			Help:    "Path to the file; leave blank to skip",
		})
		if err != nil {
			return err
		}
		path := strings.TrimSpace(answer)
		if path == "" {
			onChange(nil)
			return nil
		}
		if attachment, ok := current.(*field.Attachment); ok && attachment != nil && path == attachment.FileName {
			return nil
		}

		data, err := read(path)
		if err != nil {
			return fmt.Errorf("tui: read %s: %w", desc.Name, err)
		}
		onChange(&field.Attachment{
			FileName:    filepath.Base(path),
			ContentType: contentType(path, data),
			Data:        data,
		})
		return nil
	}
}

func contentType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

func label(desc field.Descriptor) string {
	if strings.TrimSpace(desc.Label) != "" {
		return desc.Label
	}
	return desc.Name
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
