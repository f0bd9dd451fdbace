package auth

import (
	"context"
	"errors"
	"fmt"

	"strot/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

var ErrWeakPassword = errors.New("password rejected by identity provider")

// CognitoAPI is the part of the Cognito client the provider calls.
type CognitoAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

type CognitoProvider struct {
	client   CognitoAPI
	clientID string
}

func NewCognitoProvider(client CognitoAPI, clientID string) *CognitoProvider {
	return &CognitoProvider{client: client, clientID: clientID}
}

// SignUp registers the user with the pool and returns the pool subject.
func (p *CognitoProvider) SignUp(ctx context.Context, email, password, name string) (string, error) {
	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(email), // use email as username
		Password: aws.String(password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(name)},
		},
	}

	out, err := p.client.SignUp(ctx, input)
	if err != nil {
		return "", mapCognitoError(err)
	}

	return aws.ToString(out.UserSub), nil
}

// SignIn runs the USER_PASSWORD_AUTH flow and returns the access token and
// its lifetime in seconds.
func (p *CognitoProvider) SignIn(ctx context.Context, email, password string) (string, int, error) {
	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}

	resp, err := p.client.InitiateAuth(ctx, input)
	if err != nil {
		return "", 0, mapCognitoError(err)
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		return "", 0, types.ErrInvalidCredentials
	}

	return aws.ToString(resp.AuthenticationResult.AccessToken), int(resp.AuthenticationResult.ExpiresIn), nil
}

func mapCognitoError(err error) error {
	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		return types.ErrEmailTaken
	}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		return ErrWeakPassword
	}

	var notAuthorized *ctypes.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		return types.ErrInvalidCredentials
	}

	var notFound *ctypes.UserNotFoundException
	if errors.As(err, &notFound) {
		return types.ErrInvalidCredentials
	}

	return fmt.Errorf("cognito: %w", err)
}
