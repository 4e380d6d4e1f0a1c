package service

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/2beens/blogql/internal/apperr"
	"github.com/2beens/blogql/internal/blog"
)

const (
	usernameMaxLength     = 150
	commentNameMaxLength  = 80
	commentEmailMaxLength = 254
)

// matched from the start of the value, the tail is not anchored
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+`)

func invalidInput(errs validation.Errors) error {
	if err := errs.Filter(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return nil
}

func validateNewUser(username, password string) error {
	return invalidInput(validation.Errors{
		"username": validation.Validate(username,
			validation.Required,
			validation.RuneLength(1, usernameMaxLength),
		),
		"password": validation.Validate(password, validation.Required),
	})
}

func titleRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, blog.TitleMaxLength),
	}
}

func validateNewBlog(title string) error {
	return invalidInput(validation.Errors{
		"title": validation.Validate(title, titleRules()...),
	})
}

func validateBlogUpdate(title *string) error {
	if title == nil {
		return nil
	}
	return invalidInput(validation.Errors{
		"title": validation.Validate(*title, titleRules()...),
	})
}

// validateNewComment checks email only when the caller supplied one, an
// explicit empty email is rejected.
func validateNewComment(c *blog.Comment, email *string) error {
	errs := validation.Errors{
		"body": validation.Validate(c.Body, validation.Required),
		"name": validation.Validate(c.Name, validation.RuneLength(0, commentNameMaxLength)),
	}
	if email != nil {
		errs["email"] = validation.Validate(*email,
			validation.Required.Error("must be a valid email address"),
			validation.Match(emailPattern).Error("must be a valid email address"),
			validation.RuneLength(1, commentEmailMaxLength),
		)
	}
	return invalidInput(errs)
}
