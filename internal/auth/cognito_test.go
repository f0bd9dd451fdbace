package auth

import (
	"context"
	"errors"
	"testing"

	"strot/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCognito struct {
	signUpErr error
	authErr   error
	auth      *cognitoidentityprovider.InitiateAuthOutput
	signUpIn  *cognitoidentityprovider.SignUpInput
}

func (f *fakeCognito) SignUp(_ context.Context, in *cognitoidentityprovider.SignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
	f.signUpIn = in
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &cognitoidentityprovider.SignUpOutput{UserSub: aws.String("sub-123")}, nil
}

func (f *fakeCognito) InitiateAuth(_ context.Context, _ *cognitoidentityprovider.InitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	return f.auth, f.authErr
}

func TestCognitoSignUp(t *testing.T) {
	fake := &fakeCognito{}
	p := NewCognitoProvider(fake, "client")

	sub, err := p.SignUp(context.Background(), "a@b.co", "pw", "Asha")
	require.NoError(t, err)
	assert.Equal(t, "sub-123", sub)
	assert.Equal(t, "a@b.co", aws.ToString(fake.signUpIn.Username))
	assert.Equal(t, "client", aws.ToString(fake.signUpIn.ClientId))
}

func TestCognitoSignUpErrors(t *testing.T) {
	p := NewCognitoProvider(&fakeCognito{signUpErr: &ctypes.UsernameExistsException{}}, "client")
	_, err := p.SignUp(context.Background(), "a@b.co", "pw", "Asha")
	assert.ErrorIs(t, err, types.ErrEmailTaken)

	p = NewCognitoProvider(&fakeCognito{signUpErr: &ctypes.InvalidPasswordException{}}, "client")
	_, err = p.SignUp(context.Background(), "a@b.co", "pw", "Asha")
	assert.ErrorIs(t, err, ErrWeakPassword)

	p = NewCognitoProvider(&fakeCognito{signUpErr: errors.New("network")}, "client")
	_, err = p.SignUp(context.Background(), "a@b.co", "pw", "Asha")
	assert.ErrorContains(t, err, "network")
}

func TestCognitoSignIn(t *testing.T) {
	fake := &fakeCognito{auth: &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &ctypes.AuthenticationResultType{
			AccessToken: aws.String("access"),
			ExpiresIn:   3600,
		},
	}}
	p := NewCognitoProvider(fake, "client")

	token, expiresIn, err := p.SignIn(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)
	assert.Equal(t, "access", token)
	assert.Equal(t, 3600, expiresIn)
}

func TestCognitoSignInRejected(t *testing.T) {
	p := NewCognitoProvider(&fakeCognito{authErr: &ctypes.NotAuthorizedException{}}, "client")
	_, _, err := p.SignIn(context.Background(), "a@b.co", "pw")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)

	p = NewCognitoProvider(&fakeCognito{auth: &cognitoidentityprovider.InitiateAuthOutput{}}, "client")
	_, _, err = p.SignIn(context.Background(), "a@b.co", "pw")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)
}
